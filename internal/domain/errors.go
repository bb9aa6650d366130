package domain

import "errors"

// Таксономия ошибок обработки одного вебхука.
var (
	// ErrConfigMissing — отсутствует обязательная конфигурация, обработка
	// прерывается до любых внешних вызовов.
	ErrConfigMissing = errors.New("отсутствует обязательная конфигурация")
	// ErrInvalidPayload — тело вебхука не содержит пригодного текста.
	ErrInvalidPayload = errors.New("некорректное тело вебхука")
	// ErrDelegateUnavailable — вызов LLM или чат-API не удался.
	ErrDelegateUnavailable = errors.New("внешний делегат недоступен")
	// ErrMalformedOutput — делегат ответил, но ответ не удалось разобрать.
	ErrMalformedOutput = errors.New("ответ делегата не удалось разобрать")
)
