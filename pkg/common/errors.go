package common

import (
	"fmt"
)

// NotFoundError is returned when the required value is not found.
type NotFoundError struct {
	Message string
}

func (nf NotFoundError) Error() string {
	return nf.Message
}

// NewNotFoundError creates a new instance of NotFoundError with the given message.
func NewNotFoundError(message string) NotFoundError {
	return NotFoundError{
		Message: message,
	}
}

// DuplicateNameError is returned when a database, table or column name is already in use.
type DuplicateNameError struct {
	Message string
}

func (dn DuplicateNameError) Error() string {
	return dn.Message
}

// NewDuplicateNameError creates a new instance of DuplicateNameError with the given message.
func NewDuplicateNameError(message string) DuplicateNameError {
	return DuplicateNameError{
		Message: message,
	}
}

// InvalidSchemaError is returned when a schema element fails validation.
type InvalidSchemaError struct {
	Message string
}

func (is InvalidSchemaError) Error() string {
	return is.Message
}

// NewInvalidSchemaError creates a new instance of InvalidSchemaError with a formatted message.
func NewInvalidSchemaError(format string, args ...interface{}) InvalidSchemaError {
	return InvalidSchemaError{
		Message: fmt.Sprintf(format, args...),
	}
}
