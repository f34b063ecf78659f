package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

// ErrNotFound matches a StatusError carrying a 404
var ErrNotFound = errors.New("file not found")

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
	// Err is set when the body could not be read completely
	Err error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected status %d: %s (reading body: %v)", e.Code, e.Body, e.Err)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

func newStatusError(resp *http.Response) *StatusError {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading %d response body: %v", resp.StatusCode, err)
		err = fmt.Errorf("error reading response: %w", err)
	}
	return &StatusError{Code: resp.StatusCode, Body: string(body), Err: err}
}
