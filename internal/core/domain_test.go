package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" food ", "Food"},
		{"FOOD", "Food"},
		{"Food", "Food"},
		{"dining out", "Dining Out"},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCategory(tt.in); got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"positive", 10.5, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"nan", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr && !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ValidateAmount(%v) = %v, want ErrInvalidAmount", tt.amount, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAmount(%v) = %v, want nil", tt.amount, err)
			}
		})
	}
}

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10.005, 10.01},
		{10.004, 10.0},
		{99.999, 100.0},
		{42, 42},
	}

	for _, tt := range tests {
		if got := RoundAmount(tt.in); got != tt.want {
			t.Errorf("RoundAmount(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantFirst string
		wantLast  string
	}{
		{"mid month", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024-03-01", "2024-03-31"},
		{"february leap year", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"february common year", time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), "2023-02-01", "2023-02-28"},
		{"december", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2024-12-01", "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := MonthBounds(tt.date)
			if got := first.Format(DateLayout); got != tt.wantFirst {
				t.Errorf("first = %s, want %s", got, tt.wantFirst)
			}
			if got := last.Format(DateLayout); got != tt.wantLast {
				t.Errorf("last = %s, want %s", got, tt.wantLast)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total   int
		perPage int
		want    int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
		{5, 0, 1},
		{5, -1, 1},
	}

	for _, tt := range tests {
		if got := PageCount(tt.total, tt.perPage); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}
