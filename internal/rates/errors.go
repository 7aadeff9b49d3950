package rates

import "errors"

// ErrProviderUnavailable marks a transient upstream failure: auth errors,
// rate limiting, timeouts, plan restrictions and malformed responses all
// normalize to this before crossing the provider contract boundary.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrRateNotFound means the provider responded but has no data for the
// requested pair and date.
var ErrRateNotFound = errors.New("rate not found")

// ErrInvalidRange indicates a caller error: start date after end date.
// It is never retried against another provider.
var ErrInvalidRange = errors.New("start date must not be after end date")

// ErrAdapterConfig indicates an unresolvable adapter identifier or bad
// constructor arguments. Deployment error, not retried.
var ErrAdapterConfig = errors.New("adapter configuration error")

// ErrAllProvidersExhausted is raised when every active provider failed
// during failover, or none are configured.
var ErrAllProvidersExhausted = errors.New("all providers failed")

// IsContractError reports whether err is one of the two adapter contract
// errors that the failover manager treats as retryable-by-switching-provider.
func IsContractError(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrRateNotFound)
}
