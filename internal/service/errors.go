package service

import "fmt"

// NotFoundError signals that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PreconditionError signals that the entity graph is not in a state that
// allows the requested operation. Maps to HTTP 412.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// ValidationError signals malformed or out-of-range input. Maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AccessDeniedError signals that the caller lacks the rights for the
// operation. Maps to HTTP 403.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

func notFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func precondition(format string, args ...any) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func accessDenied(format string, args ...any) error {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}
