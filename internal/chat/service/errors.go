package service

import "fmt"

// ValidationError rejects a malformed envelope before any side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// StorageError reports a blob store write failure. Nothing is persisted
// when this is returned.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError reports a message log append failure. No push is
// attempted when this is returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
