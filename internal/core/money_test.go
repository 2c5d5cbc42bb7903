package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.34", 12.34},
		{"12,34", 12.34},
		{" 7 ", 7},
		{"0.01", 0.01},
		{"12.345", 12.34},
		{"12.346", 12.35},
		{".5", 0.5},
		{"100", 100},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAmountRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-5", "+5", "0", "0.00", "1.2.3", "1,2,3", "12a", "99999999999999999999"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) = %v, want ErrInvalidAmount", in, err)
		}
	}
}
