package exchange

import "errors"

// Типизированные ошибки ядра обменов. Все ошибки гардов возвращаются
// вызывающему и на границе API отображаются в HTTP-статусы.
var (
	// ErrNotFound — объявление, интерес или чат не найдены
	ErrNotFound = errors.New("объект не найден")
	// ErrForbidden — действие доступно только участнику обмена
	ErrForbidden = errors.New("действие запрещено")
	// ErrOwnOffer — попытка проявить интерес к собственному объявлению
	ErrOwnOffer = errors.New("нельзя проявить интерес к собственному объявлению")
	// ErrDuplicate — интерес к объявлению уже существует
	ErrDuplicate = errors.New("интерес уже существует")
	// ErrBadStatus — переход недопустим из текущего статуса
	ErrBadStatus = errors.New("недопустимый статус для операции")
	// ErrAlreadyRealized — подтверждение уже учтено либо обмен завершён
	ErrAlreadyRealized = errors.New("обмен уже подтверждён")
	// ErrStorage — инфраструктурная ошибка хранилища
	ErrStorage = errors.New("ошибка хранилища")

	// errChatExists — внутренний сигнал гонки создания чата: уникальный
	// ключ пары уже занят, нужно переиспользовать существующий чат
	errChatExists = errors.New("чат для пары уже существует")
)
