package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	crerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		code     int
		sentinel error
		check    func(error) bool
	}{
		{http.StatusUnauthorized, ErrUnauthorized, IsUnauthorized},
		{http.StatusForbidden, ErrForbidden, IsForbidden},
		{http.StatusNotFound, ErrNotFound, IsNotFound},
		{http.StatusTooManyRequests, ErrRateLimited, IsRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			apiErr := &googleapi.Error{Code: tt.code, Message: "api said no"}
			err := WrapError(fmt.Errorf("call: %w", apiErr))

			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, tt.check(err))
			assert.Contains(t, err.Error(), "api said no")
			assert.NotEmpty(t, crerrors.FlattenHints(err))

			var gerr *googleapi.Error
			assert.True(t, errors.As(err, &gerr), "original API error stays reachable")
		})
	}

	t.Run("passes through other errors", func(t *testing.T) {
		plain := errors.New("connection refused")
		assert.Equal(t, plain, WrapError(plain))

		server := &googleapi.Error{Code: http.StatusInternalServerError}
		assert.Equal(t, error(server), WrapError(server))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil))
	})

	t.Run("plain error is not classified", func(t *testing.T) {
		assert.False(t, IsUnauthorized(errors.New("x")))
		assert.False(t, IsRateLimited(nil))
	})
}
