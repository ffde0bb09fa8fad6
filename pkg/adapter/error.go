package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// AdapterError is a failed provider call: which gateway failed, the HTTP
// status it answered with (0 when the call never got a response) and the
// underlying error.
type AdapterError struct {
	Provider  string
	Status    int
	Temporary bool
	Err       error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	switch {
	case e.Err != nil && e.Provider != "":
		return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Provider != "":
		return fmt.Sprintf("%s API error (status=%d)", e.Provider, e.Status)
	default:
		return fmt.Sprintf("adapter error (status=%d)", e.Status)
	}
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether the provider asked to be tried again: a rate
// limit, a server-side failure or a timeout.
func (e *AdapterError) Retryable() bool {
	if e == nil {
		return false
	}
	if e.Temporary {
		return true
	}
	return e.Status == http.StatusTooManyRequests || (e.Status >= 500 && e.Status <= 599)
}

// wrapProviderError turns an SDK error into an *AdapterError, lifting the
// HTTP status out of the anthropic, openai and genai error types. Context
// errors are returned as they are.
func wrapProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	ae := &AdapterError{Provider: provider, Err: err}

	var anthropicErr *anthropic.Error
	var openaiErr *openai.Error
	var genaiErr genai.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &anthropicErr):
		ae.Status = anthropicErr.StatusCode
	case errors.As(err, &openaiErr):
		ae.Status = openaiErr.StatusCode
	case errors.As(err, &genaiErr):
		ae.Status = genaiErr.Code
	case errors.As(err, &netErr):
		ae.Temporary = netErr.Timeout()
	}
	return ae
}

// StatusOf returns the provider status carried by err, or 0.
func StatusOf(err error) int {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// ProviderOf returns the name of the provider that produced err, or "".
func ProviderOf(err error) string {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Provider
	}
	return ""
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
