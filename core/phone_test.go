package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gharkaam/authcore/core"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "919876543210"},
		{"09876543210", "919876543210"},
		{"919876543210", "919876543210"},
		{"+91 98765 43210", "919876543210"},
		{"+91-98765-43210", "919876543210"},
		{"(91) 98765 43210", "919876543210"},
		{"0919876543210", "919876543210"},
		{"6000000000", "916000000000"},
		{"7123456789", "917123456789"},
		{"8999999999", "918999999999"},
	}
	for _, tc := range cases {
		got, err := core.NormalizePhone(tc.in)
		if err != nil {
			t.Fatalf("NormalizePhone(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePhoneRejects(t *testing.T) {
	cases := []string{
		"",
		"12345",
		"98765432101",   // 11 digits, no calling code
		"5876543210",    // bad leading digit
		"1234567890",    // bad leading digit
		"929876543210",  // wrong calling code => 12 digits left
		"919876543210123", // too long
		"abc",
	}
	for _, in := range cases {
		_, err := core.NormalizePhone(in)
		if err == nil {
			t.Fatalf("NormalizePhone(%q) unexpectedly succeeded", in)
		}
		var formatErr *core.PhoneFormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("NormalizePhone(%q) returned %T, want *PhoneFormatError", in, err)
		}
		if formatErr.Reason == "" {
			t.Fatalf("NormalizePhone(%q) error has no reason", in)
		}
	}
}

func FuzzNormalizePhone(f *testing.F) {
	f.Add("9876543210")
	f.Add("+91 98765-43210")
	f.Add("0987 654 3210")
	f.Add("not a phone")
	f.Fuzz(func(t *testing.T, raw string) {
		got, err := core.NormalizePhone(raw)
		if err != nil {
			var formatErr *core.PhoneFormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("unexpected error type %T", err)
			}
			return
		}
		if len(got) != 12 || !strings.HasPrefix(got, "91") {
			t.Fatalf("normalized %q to %q: not 12 digits with calling code", raw, got)
		}
		if got[2] < '6' || got[2] > '9' {
			t.Fatalf("normalized %q to %q: subscriber starts with %c", raw, got, got[2])
		}
		for _, r := range got {
			if r < '0' || r > '9' {
				t.Fatalf("normalized %q to %q: non-digit", raw, got)
			}
		}
		// Determinism and idempotence on the canonical form.
		again, err := core.NormalizePhone(got)
		if err != nil || again != got {
			t.Fatalf("re-normalizing %q gave (%q, %v)", got, again, err)
		}
	})
}
