package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInterestStatusValid(t *testing.T) {
	for _, status := range []InterestStatus{InterestProposed, InterestAccepted, InterestWaiting, InterestRealized} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, InterestStatus("pending").Valid())
	assert.False(t, InterestStatus("").Valid())
}

func TestInterestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    InterestStatus
		to      InterestStatus
		allowed bool
	}{
		{InterestProposed, InterestAccepted, true},
		{InterestProposed, InterestWaiting, false},
		{InterestProposed, InterestRealized, false},
		{InterestAccepted, InterestWaiting, true},
		{InterestAccepted, InterestRealized, true},
		{InterestAccepted, InterestProposed, false},
		{InterestWaiting, InterestRealized, true},
		{InterestWaiting, InterestAccepted, true},
		{InterestWaiting, InterestProposed, false},
		{InterestRealized, InterestAccepted, false},
		{InterestRealized, InterestWaiting, false},
		{InterestRealized, InterestProposed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestInterestStatusTerminal(t *testing.T) {
	assert.True(t, InterestRealized.Terminal())
	assert.False(t, InterestWaiting.Terminal())
}

func TestCanonicalPair(t *testing.T) {
	x := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	y := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	a, b := CanonicalPair(x, y)
	assert.Equal(t, x, a)
	assert.Equal(t, y, b)

	a, b = CanonicalPair(y, x)
	assert.Equal(t, x, a)
	assert.Equal(t, y, b)
}
