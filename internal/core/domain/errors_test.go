package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrEmptyField", ErrEmptyField},
		{"ErrInvalidEmailFormat", ErrInvalidEmailFormat},
		{"ErrNoCredential", ErrNoCredential},
		{"ErrRefreshFailed", ErrRefreshFailed},
		{"ErrInteractiveFlowFailed", ErrInteractiveFlowFailed},
		{"ErrDocumentCreateFailed", ErrDocumentCreateFailed},
		{"ErrExportFailed", ErrExportFailed},
		{"ErrSendFailed", ErrSendFailed},
		{"ErrTimeout", ErrTimeout},
		{"ErrUnexpected", ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"empty field", &FieldError{Field: "name", Err: ErrEmptyField}, KindValidation},
		{"bad email", fmt.Errorf("check: %w", ErrInvalidEmailFormat), KindValidation},
		{"no credential", ErrNoCredential, KindAuth},
		{"refresh", fmt.Errorf("oauth: %w", ErrRefreshFailed), KindAuth},
		{"interactive", ErrInteractiveFlowFailed, KindAuth},
		{"create", ErrDocumentCreateFailed, KindStage},
		{"export", ErrExportFailed, KindStage},
		{"send", ErrSendFailed, KindStage},
		{"timeout", ErrTimeout, KindStage},
		{"other", errors.New("boom"), KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindOf_AuthWinsOverStage(t *testing.T) {
	err := Mark(fmt.Errorf("get token: %w", ErrRefreshFailed), ErrDocumentCreateFailed)

	assert.Equal(t, KindAuth, KindOf(err))
	assert.ErrorIs(t, err, ErrDocumentCreateFailed)
}

func TestFieldError(t *testing.T) {
	err := &FieldError{Field: "email", Err: ErrInvalidEmailFormat}

	assert.Equal(t, "email: Invalid email format", err.Error())
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
}

func TestMark(t *testing.T) {
	t.Run("keeps cause message", func(t *testing.T) {
		cause := errors.New("googleapi: Error 500")
		err := Mark(cause, ErrSendFailed)

		assert.Equal(t, "googleapi: Error 500", err.Error())
		assert.ErrorIs(t, err, ErrSendFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Mark(nil, ErrSendFailed))
	})

	t.Run("idempotent", func(t *testing.T) {
		err := Mark(errors.New("x"), ErrExportFailed)
		assert.Same(t, err, Mark(err, ErrExportFailed))
	})
}
