package storefront

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrCheckoutInvalid is returned by Checkout.Begin when the server
	// rejects the selection. Use errors.As with *CheckoutError for details.
	ErrCheckoutInvalid = errors.New("storefront: checkout selection is no longer valid")
	ErrNoSnapshot      = errors.New("storefront: no checkout in progress")
	ErrNotLoggedIn     = errors.New("storefront: no refresh token available")
)

// APIError is the decoded error envelope of a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("storefront: %d %s: %s", e.StatusCode, e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}

	return msg
}

// IsStatus reports whether err carries an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// CheckoutError lists the lines that failed validation.
type CheckoutError struct {
	Lines []LineValidation
}

func (e *CheckoutError) Error() string {
	reasons := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		reasons = append(reasons, fmt.Sprintf("%s: %s", line.ProductID, line.Reason))
	}

	return fmt.Sprintf("%s: %s", ErrCheckoutInvalid, strings.Join(reasons, ", "))
}

func (e *CheckoutError) Unwrap() error {
	return ErrCheckoutInvalid
}
