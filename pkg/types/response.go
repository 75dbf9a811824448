// Package types defines the wire envelopes every API response uses. The
// KantinKu clients switch on the presence of the top-level "data" or
// "error" key, so both shapes live here rather than per handler.
package types

// SuccessEnvelope wraps a successful payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body under the "error" key. Code carries the machine
// readable constant from pkg/errors; Details is optional field-level
// context such as validation messages.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps a failure as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
