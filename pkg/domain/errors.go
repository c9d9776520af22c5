package domain

import "errors"

// Common errors for catalog and rate-resolution operations.
var (
	// ErrCurrencyNotFound indicates that an identifier resolved via neither
	// the alias table nor an upstream lookup. Not retryable without new input.
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrQuoteUnavailable indicates that the upstream responded successfully
	// but the requested id/pair combination was absent from the body.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrInvalidRate indicates that a computed rate was zero, negative, NaN
	// or infinite. Callers treat it identically to ErrQuoteUnavailable.
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrUpstreamFetch indicates a transport, HTTP or parse failure from a
	// quote source.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrCancelled indicates that a resolution was superseded by a newer
	// request. It is dropped, never surfaced to the UI as an error.
	ErrCancelled = errors.New("resolution cancelled")
)

// SourceError wraps an error from a named quote source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return "source " + e.Source + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
