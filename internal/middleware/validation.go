package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "disciplinedash/internal/errors"
	"disciplinedash/internal/validation"
)

// maxListItems bounds comma-separated query lists
const maxListItems = 50

// QueryParamValidator validates query parameters and answers invalid ones
// with a problem response
type QueryParamValidator struct {
	validator    *validation.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		validator:    validation.New(),
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateYear reads a year parameter. Years are opaque keys: the value is
// not trimmed or reformatted, and a year absent from the data yields empty
// views rather than an error. Empty is returned as is so the caller can
// apply its default.
func (v *QueryParamValidator) ValidateYear(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return "", true
	}

	if err := v.validator.Var(param, value, "label"); err != nil {
		v.reject(w, r, param, value, err.Error())
		return "", false
	}
	return value, true
}

// ValidateList reads a comma-separated list of keys, dropping empty items
// but keeping any surrounding whitespace. A repeated parameter is treated as
// one longer list.
func (v *QueryParamValidator) ValidateList(w http.ResponseWriter, r *http.Request, param string) ([]string, bool) {
	var items []string
	for _, raw := range r.URL.Query()[param] {
		for _, item := range strings.Split(raw, ",") {
			if item != "" {
				items = append(items, item)
			}
		}
	}

	if len(items) > maxListItems {
		v.reject(w, r, param, strings.Join(r.URL.Query()[param], ","),
			fmt.Sprintf("%s accepts at most %d items", param, maxListItems))
		return nil, false
	}
	if len(items) == 0 {
		return items, true
	}

	if err := v.validator.Var(param, items, "dive,label"); err != nil {
		v.reject(w, r, param, strings.Join(r.URL.Query()[param], ","), err.Error())
		return nil, false
	}
	return items, true
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, value, reason string) {
	v.logger.DebugContext(r.Context(), "invalid query parameter",
		slog.String("param", param),
		slog.String("value", value),
		slog.String("reason", reason))
	v.errorHandler.HandleError(w, r, apierrors.InvalidParameterError(param, value, reason))
}
