package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lendledger/internal/domain"
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return &domain.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: name, Message: fmt.Sprintf("%s must be a positive integer", name)}
	}
	return id, nil
}

// parseDate accepts YYYY-MM-DD.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Message: fmt.Sprintf("%s must be YYYY-MM-DD", field)}
	}
	return t, nil
}

func parseDatePtr(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toInt64Ptr tolerates JSON numbers and numeric strings; clients are mixed
// about which they send for filter ids.
func toInt64Ptr(field string, v any) (*int64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		i := int64(t)
		return &i, nil
	case string:
		if t == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, &domain.ValidationError{Field: field, Message: fmt.Sprintf("%s must be integer or empty", field)}
		}
		return &i, nil
	default:
		return nil, &domain.ValidationError{Field: field, Message: fmt.Sprintf("%s must be integer or empty", field)}
	}
}
