package rest

import (
	"errors"
	"testing"
	"time"

	"lendledger/internal/domain"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("start_date", "2025-02-01")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	want := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"01-02-2025", "2025-2-1", "yesterday", "2025-02-30"} {
		if _, err := parseDate("start_date", bad); err == nil {
			t.Errorf("parseDate(%q) should fail", bad)
		} else {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("parseDate(%q) error type %T", bad, err)
			}
		}
	}
}

func TestToInt64Ptr(t *testing.T) {
	cases := []struct {
		name    string
		input   any
		want    *int64
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"number", float64(7), ptr(int64(7)), false},
		{"numeric string", "42", ptr(int64(42)), false},
		{"empty string", "", nil, false},
		{"garbage string", "abc", nil, true},
		{"bool", true, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := toInt64Ptr("loan_id", tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("got %d, want nil", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Errorf("got %v, want %d", got, *tc.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
