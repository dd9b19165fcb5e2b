package common

import (
	"fmt"
)

// NotFoundError is returned when the required value is not found.
type NotFoundError struct {
	Message string
}

func (nf NotFoundError) Error() string {
	return fmt.Sprintf("%s", nf.Message)
}

// NewNotFoundError creates a new instance of NotFoundError with the given message.
func NewNotFoundError(message string) NotFoundError {
	return NotFoundError{
		Message: message,
	}
}

// KeyLengthError is returned when a fixed width key has the wrong number of bytes.
type KeyLengthError struct {
	Message string

	// Lengths of the offending keys.
	Lengths []int
}

func (kle *KeyLengthError) Error() string {
	return fmt.Sprintf("%s; key lengths %v", kle.Message, kle.Lengths)
}

// NewKeyLengthError creates a new instance of KeyLengthError with the given message and key lengths.
func NewKeyLengthError(message string, lengths ...int) *KeyLengthError {
	return &KeyLengthError{
		Message: message,
		Lengths: lengths,
	}
}

// ComparatorMismatchError is returned when a db is opened with a comparator different from the one it was created with.
type ComparatorMismatchError struct {
	Message string
}

func (cme ComparatorMismatchError) Error() string {
	return fmt.Sprintf("%s", cme.Message)
}

// NewComparatorMismatchError creates a new instance of ComparatorMismatchError with the given message.
func NewComparatorMismatchError(message string) ComparatorMismatchError {
	return ComparatorMismatchError{
		Message: message,
	}
}

// CorruptionError is returned when persisted or batched data can't be decoded.
type CorruptionError struct {
	Message string
}

func (ce CorruptionError) Error() string {
	return fmt.Sprintf("%s", ce.Message)
}

// NewCorruptionError creates a new instance of CorruptionError with the given message.
func NewCorruptionError(message string) CorruptionError {
	return CorruptionError{
		Message: message,
	}
}

// InvalidCodecError is returned when an unknown key codec is requested.
type InvalidCodecError struct {
	Message string
}

func (ice InvalidCodecError) Error() string {
	return fmt.Sprintf("%s", ice.Message)
}

// NewInvalidCodecError creates a new instance of InvalidCodecError with the given message.
func NewInvalidCodecError(message string) InvalidCodecError {
	return InvalidCodecError{
		Message: message,
	}
}

// StaleLogRecordWriterError is returned when a record writer is used after the log moved on to the next record.
type StaleLogRecordWriterError struct {
	Message string
}

func (slrw StaleLogRecordWriterError) Error() string {
	return fmt.Sprintf("%s", slrw.Message)
}

// NewStaleLogRecordWriterError creates a new instance of StaleLogRecordWriterError with the given message.
func NewStaleLogRecordWriterError(message string) StaleLogRecordWriterError {
	return StaleLogRecordWriterError{
		Message: message,
	}
}

// DbLockedError is returned when the db directory is held by another open db.
type DbLockedError struct {
	Message string
}

func (dle DbLockedError) Error() string {
	return fmt.Sprintf("%s", dle.Message)
}

// NewDbLockedError creates a new instance of DbLockedError with the given message.
func NewDbLockedError(message string) DbLockedError {
	return DbLockedError{
		Message: message,
	}
}
