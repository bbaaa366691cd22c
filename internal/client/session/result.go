package session

import "fmt"

// FieldResult is the outcome of reading one persisted entry. Err is a
// *StorageError, *DecryptError or *ParseError; the store treats any error
// as an absent value.
type FieldResult struct {
	Value   string
	Present bool
	Err     error
}

type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("read %s: %v", e.Key, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

type DecryptError struct {
	Key string
	Err error
}

func (e *DecryptError) Error() string { return fmt.Sprintf("decrypt %s: %v", e.Key, e.Err) }
func (e *DecryptError) Unwrap() error { return e.Err }

type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Key, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
