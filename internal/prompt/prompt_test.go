package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
)

var _ validator.FilterSource = (*Collector)(nil)

func TestCollector_FilterOptions(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		region    string
		min       string
		max       string
		questions int
	}{
		{name: "Declined", input: "n\n", questions: 1},
		{name: "Upper-case yes with all filters", input: "Y\nNorth\n1,000\n5000.50\n", region: "North", min: "1000", max: "5000.5", questions: 4},
		{name: "Skip everything", input: "y\n\n\n\n", questions: 4},
		{name: "Only max", input: "y\n\n\n200\n", max: "200", questions: 4},
		{name: "End of input", input: "y\nEast", region: "East", questions: 4},
		{name: "Empty input", input: "", questions: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			options, err := NewCollector(strings.NewReader(tt.input), &out).FilterOptions(context.Background(), nil)
			if err != nil {
				t.Fatalf("FilterOptions() error = %v", err)
			}

			if options.Region != tt.region {
				t.Errorf("Region = %q, want %q", options.Region, tt.region)
			}
			checkBound(t, "min", options.MinAmount, tt.min)
			checkBound(t, "max", options.MaxAmount, tt.max)

			if got := strings.Count(out.String(), "(or press Enter to skip)") + strings.Count(out.String(), "(y/n)"); got != tt.questions {
				t.Errorf("asked %d questions, want %d", got, tt.questions)
			}
		})
	}
}

func checkBound(t *testing.T, name string, got *decimal.Decimal, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%s = %s, want unset", name, got)
		}
		return
	}
	if got == nil || !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %v, want %s", name, got, want)
	}
}

func TestCollector_InvalidAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.ErrorCode
	}{
		{name: "Not a number", input: "y\n\nabc\n\n", code: errors.CodeInvalidAmount},
		{name: "Inverted bounds", input: "y\n\n500\n100\n", code: errors.CodeInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCollector(strings.NewReader(tt.input), &bytes.Buffer{}).FilterOptions(context.Background(), nil)
			ae, ok := errors.AsAnalyticsError(err)
			if !ok {
				t.Fatalf("expected AnalyticsError, got %v", err)
			}
			if ae.Category != errors.CategoryValidation || ae.Code != tt.code {
				t.Errorf("got %s/%s, want validation/%s", ae.Category, ae.Code, tt.code)
			}
		})
	}
}

func TestCollector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollector(strings.NewReader("y\n"), &bytes.Buffer{}).FilterOptions(ctx, nil)
	if ae, ok := errors.AsAnalyticsError(err); !ok || ae.Code != errors.CodeCancelled {
		t.Errorf("expected cancelled error, got %v", err)
	}
}
