package weather

import "errors"

// Fetch failures fall into three classes with different retry behaviour.
// Providers and the client wrap these sentinels with %w so callers can
// classify with errors.Is.
var (
	// ErrAuth means the API rejected the credentials (401/403). Retrying
	// cannot fix bad credentials, so a fetch fails after a single attempt.
	ErrAuth = errors.New("weather: authentication rejected")

	// ErrNetwork covers transport failures, timeouts and 5xx responses.
	// The client retries these up to its configured attempt limit.
	ErrNetwork = errors.New("weather: network failure")

	// ErrParse means a 2xx payload was structurally unusable. The payload
	// is already in hand, so retrying is pointless; the next refresh tick
	// may succeed if the provider recovers.
	ErrParse = errors.New("weather: malformed payload")
)
