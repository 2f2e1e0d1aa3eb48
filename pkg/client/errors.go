package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassTransient represents HTTP statuses eligible for retry.
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassTerminal represents HTTP error statuses that are not retried.
	ErrorClassTerminal ErrorClass = "terminal"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// retryableStatuses is the fixed set of transient HTTP statuses.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// classifyStatus categorizes an HTTP error status for retry handling.
func classifyStatus(statusCode int) ErrorClass {
	if retryableStatuses[statusCode] {
		return ErrorClassTransient
	}
	return ErrorClassTerminal
}

// shouldRetry determines if an error class is eligible for retry.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassTransient, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// FakerError represents a failed request against the Faker API.
type FakerError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FakerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("faker api %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("faker api %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FakerError) Unwrap() error {
	return e.Err
}

// classOf extracts the error class from an error chain, defaulting to network.
func classOf(err error) ErrorClass {
	var fe *FakerError
	if errors.As(err, &fe) {
		return fe.ErrorClass
	}
	return ErrorClassNetwork
}
