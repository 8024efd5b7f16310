package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1, true},
		{" 250 ", 250, true},
		{"1,250", 1250, true},
		{"$40", 40, true},
		{"12.00", 12, true},
		{"0", 0, true},
		{"-5", -5, true},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[int64]string{
		0:        "$0",
		50:       "$50",
		1234:     "$1,234",
		1234567:  "$1,234,567",
		-50:      "-$50",
		-1234567: "-$1,234,567",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Fatalf("FormatCurrency(%d) = %q, want %q", in, got, want)
		}
	}
}
