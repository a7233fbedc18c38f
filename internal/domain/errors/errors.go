package errors

import (
	"fmt"
)

type ErrAuthorizationDenied struct {
	Trigger string
	UserID  string
}

func (e *ErrAuthorizationDenied) Error() string {
	return fmt.Sprintf("недостаточно прав для команды %s (пользователь %s)", e.Trigger, e.UserID)
}

func (e *ErrAuthorizationDenied) Is(target error) bool {
	_, ok := target.(*ErrAuthorizationDenied)
	return ok
}

type ErrCooldownActive struct {
	Trigger   string
	Remaining string
}

func (e *ErrCooldownActive) Error() string {
	return fmt.Sprintf("команда %s на перезарядке, осталось %s", e.Trigger, e.Remaining)
}

func (e *ErrCooldownActive) Is(target error) bool {
	_, ok := target.(*ErrCooldownActive)
	return ok
}

type ErrTriggerClash struct {
	Trigger  string
	Existing string
}

func (e *ErrTriggerClash) Error() string {
	return fmt.Sprintf("триггер '%s' конфликтует с существующей командой '%s'", e.Trigger, e.Existing)
}

func (e *ErrTriggerClash) Is(target error) bool {
	_, ok := target.(*ErrTriggerClash)
	return ok
}

type ErrUnknownTrigger struct {
	Trigger string
}

func (e *ErrUnknownTrigger) Error() string {
	return "неизвестный триггер: " + e.Trigger
}

func (e *ErrUnknownTrigger) Is(target error) bool {
	_, ok := target.(*ErrUnknownTrigger)
	return ok
}

// ErrPersistenceFailure возникает, когда изменение уже применено в памяти,
// но записать его в хранилище не удалось.
type ErrPersistenceFailure struct {
	Operation string
	Cause     error
}

func (e *ErrPersistenceFailure) Error() string {
	return fmt.Sprintf("ошибка сохранения команд (%s): %v", e.Operation, e.Cause)
}

func (e *ErrPersistenceFailure) Unwrap() error {
	return e.Cause
}

func (e *ErrPersistenceFailure) Is(target error) bool {
	_, ok := target.(*ErrPersistenceFailure)
	return ok
}

type ErrMalformedPersistedState struct {
	Source string
	Cause  error
}

func (e *ErrMalformedPersistedState) Error() string {
	return fmt.Sprintf("повреждённое сохранённое состояние %s: %v", e.Source, e.Cause)
}

func (e *ErrMalformedPersistedState) Unwrap() error {
	return e.Cause
}

func (e *ErrMalformedPersistedState) Is(target error) bool {
	_, ok := target.(*ErrMalformedPersistedState)
	return ok
}

type ErrUnknownUserLevel struct {
	Level string
}

func (e *ErrUnknownUserLevel) Error() string {
	return "неизвестный уровень доступа: " + e.Level
}

type ErrUnknownCommandType struct {
	Type string
}

func (e *ErrUnknownCommandType) Error() string {
	return "неизвестный тип команды: " + e.Type
}

type ErrInsufficientPoints struct {
	UserID    string
	Requested int
	Available int
}

func (e *ErrInsufficientPoints) Error() string {
	return fmt.Sprintf("у пользователя %s недостаточно очков: нужно %d, есть %d", e.UserID, e.Requested, e.Available)
}

func (e *ErrInsufficientPoints) Is(target error) bool {
	_, ok := target.(*ErrInsufficientPoints)
	return ok
}

type ErrInvalidArgument struct {
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("некорректный аргумент: %s", e.Message)
}

type ErrUnknownStorageType struct {
	StorageType string
}

func (e *ErrUnknownStorageType) Error() string {
	return fmt.Sprintf("неизвестный тип хранилища: %s", e.StorageType)
}

type ErrUnknownTransport struct {
	Transport string
}

func (e *ErrUnknownTransport) Error() string {
	return fmt.Sprintf("неизвестный транспорт сообщений: %s", e.Transport)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

// ErrMissingTextInEvent возникает, когда во входящем событии чата нет текста.
type ErrMissingTextInEvent struct{}

func (e *ErrMissingTextInEvent) Error() string {
	return "отсутствует обязательное поле text в событии чата"
}

func (e *ErrMissingTextInEvent) Is(target error) bool {
	_, ok := target.(*ErrMissingTextInEvent)
	return ok
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
