package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrBadRequest indicates the provider rejected the request or the credentials (HTTP 400/401/403).
var ErrBadRequest = errors.New("ai request rejected")

// ErrEmptyResponse indicates the provider answered without any generated text.
var ErrEmptyResponse = errors.New("ai response empty")

// ClassifyStatus maps a provider HTTP status onto the sentinel errors above.
// It returns nil for statuses that carry no special meaning.
func ClassifyStatus(code int) error {
	switch code {
	case 429:
		return ErrQuotaExceeded
	case 400, 401, 403:
		return ErrBadRequest
	default:
		return nil
	}
}
