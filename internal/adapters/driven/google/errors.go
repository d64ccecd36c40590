package google

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")
)

func hasStatus(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || hasStatus(err, http.StatusForbidden)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || hasStatus(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited) || hasStatus(err, http.StatusTooManyRequests)
}

// WrapError classifies a Google API error. The returned error keeps the
// API message, matches the package sentinel for its status under
// errors.Is, and carries a hint for the user where one helps.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return errors.WithHint(domain.Mark(err, ErrUnauthorized),
			"the stored credential was rejected; run `docrelay auth login`")
	case http.StatusForbidden:
		return errors.WithHint(domain.Mark(err, ErrForbidden),
			"check that the Docs, Drive and Gmail APIs are enabled and the credential has the documents, drive.file and gmail.send scopes")
	case http.StatusNotFound:
		return errors.WithHint(domain.Mark(err, ErrNotFound),
			"check the configured Drive folder ID")
	case http.StatusTooManyRequests:
		return errors.WithHint(domain.Mark(err, ErrRateLimited),
			"Google API quota exceeded; try again later")
	default:
		return err
	}
}
