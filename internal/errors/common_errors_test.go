package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("disk full")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "parsing error",
			err:      NewParsingError("bad percent", cause),
			wantType: ErrTypeParsing,
			wantMsg:  "[PARSING] bad percent: disk full",
		},
		{
			name:     "storage error",
			err:      NewStorageError("write failed", cause),
			wantType: ErrTypeStorage,
			wantMsg:  "[STORAGE] write failed: disk full",
		},
		{
			name:     "validation error without cause",
			err:      NewAppValidationError("year is required"),
			wantType: ErrTypeValidation,
			wantMsg:  "[VALIDATION] year is required",
		},
		{
			name:     "not found error",
			err:      NewNotFoundError("chart"),
			wantType: ErrTypeNotFound,
			wantMsg:  "[NOT_FOUND] chart not found",
		},
		{
			name:     "unavailable error",
			err:      NewUnavailableError("dataset is not loaded", nil),
			wantType: ErrTypeUnavailable,
			wantMsg:  "[UNAVAILABLE] dataset is not loaded",
		},
		{
			name:     "render error",
			err:      NewRenderError("svg failed", cause),
			wantType: ErrTypeRender,
			wantMsg:  "[RENDER] svg failed: disk full",
		},
		{
			name:     "config error",
			err:      NewConfigError("invalid port", nil),
			wantType: ErrTypeConfig,
			wantMsg:  "[CONFIG] invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("outer: %w", NewStorageError("write failed", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad row"}

	err.WithContext("line", 4).WithContext("column", "Year")

	assert.Equal(t, 4, err.Context["line"])
	assert.Equal(t, "Year", err.Context["column"])
}
