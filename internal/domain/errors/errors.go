package errors

import (
	"fmt"
)

type ErrMonitorNotFound struct {
	ID int64
}

func (e *ErrMonitorNotFound) Error() string {
	return fmt.Sprintf("монитор не найден: %d", e.ID)
}

func (e *ErrMonitorNotFound) Is(target error) bool {
	_, ok := target.(*ErrMonitorNotFound)
	return ok
}

type ErrMonitorAlreadyExists struct {
	GUID string
}

func (e *ErrMonitorAlreadyExists) Error() string {
	return "монитор уже существует: " + e.GUID
}

func (e *ErrMonitorAlreadyExists) Is(target error) bool {
	_, ok := target.(*ErrMonitorAlreadyExists)
	return ok
}

type ErrMonitorExecuting struct {
	ID int64
}

func (e *ErrMonitorExecuting) Error() string {
	return fmt.Sprintf("монитор %d уже выполняется", e.ID)
}

func (e *ErrMonitorExecuting) Is(target error) bool {
	_, ok := target.(*ErrMonitorExecuting)
	return ok
}

type ErrMonitorDisabled struct {
	ID int64
}

func (e *ErrMonitorDisabled) Error() string {
	return fmt.Sprintf("монитор %d отключён", e.ID)
}

func (e *ErrMonitorDisabled) Is(target error) bool {
	_, ok := target.(*ErrMonitorDisabled)
	return ok
}

type ErrEventNotFound struct {
	ID string
}

func (e *ErrEventNotFound) Error() string {
	return "событие не найдено: " + e.ID
}

func (e *ErrEventNotFound) Is(target error) bool {
	_, ok := target.(*ErrEventNotFound)
	return ok
}

type ErrContentNotFound struct {
	Key string
}

func (e *ErrContentNotFound) Error() string {
	return "контент не найден: " + e.Key
}

func (e *ErrContentNotFound) Is(target error) bool {
	_, ok := target.(*ErrContentNotFound)
	return ok
}

// ErrSourceNotConfigured — для монитора не настроена страница или канал.
// В отличие от сетевых ошибок не ретраится.
type ErrSourceNotConfigured struct {
	GUID string
}

func (e *ErrSourceNotConfigured) Error() string {
	return "источник не настроен для монитора: " + e.GUID
}

func (e *ErrSourceNotConfigured) Is(target error) bool {
	_, ok := target.(*ErrSourceNotConfigured)
	return ok
}

type ErrUnknownContentType struct {
	Type string
}

func (e *ErrUnknownContentType) Error() string {
	return "неизвестный тип контента: " + e.Type
}

func (e *ErrUnknownContentType) Is(target error) bool {
	_, ok := target.(*ErrUnknownContentType)
	return ok
}

type ErrSnapshotMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrSnapshotMismatch) Error() string {
	return fmt.Sprintf("сравнение снапшотов разных типов контента: %s и %s", e.Expected, e.Actual)
}

func (e *ErrSnapshotMismatch) Is(target error) bool {
	_, ok := target.(*ErrSnapshotMismatch)
	return ok
}

type ErrInvalidSnapshot struct {
	Cause error
}

func (e *ErrInvalidSnapshot) Error() string {
	return fmt.Sprintf("ошибка при разборе снапшота: %v", e.Cause)
}

func (e *ErrInvalidSnapshot) Unwrap() error {
	return e.Cause
}

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
}

type ErrInvalidValue struct {
	FieldName string
	Value     string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("некорректное значение '%s' для поля '%s'", e.Value, e.FieldName)
}

func (e *ErrInvalidValue) Is(target error) bool {
	_, ok := target.(*ErrInvalidValue)
	return ok
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
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

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
