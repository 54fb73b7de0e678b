package server

import "fmt"

// StartError is returned when the listener cannot be bound.
type StartError struct {
	Addr string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start server on %s: %v", e.Addr, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
