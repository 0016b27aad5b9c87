package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"vacio", "", ""},
		{"solo espacios", "   \t ", ""},
		{"corto", "Hi", "Hi"},
		{"recorta bordes", "  Hola mundo  ", "Hola mundo"},
		{"exactamente el maximo", "12345678901234567890", "12345678901234567890"},
		{"trunca", "Hello world, this is long enough to truncate", "Hello world, this is..."},
		{"trunca y limpia espacio final", "Hello world, this   is long", "Hello world, this..."},
		{"cuenta runas", "ñandú ñandú ñandú ñandú", "ñandú ñandú ñandú ña..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveTitle(tc.in, DefaultTitleLength); got != tc.want {
				t.Fatalf("DeriveTitle(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDeriveTitle_Bounds(t *testing.T) {
	inputs := []string{
		"a",
		strings.Repeat("x", 19),
		strings.Repeat("x", 20),
		strings.Repeat("x", 21),
		"  " + strings.Repeat("palabra ", 12),
		strings.Repeat("日本語", 10),
	}
	for _, in := range inputs {
		got := DeriveTitle(in, DefaultTitleLength)
		trimmed := strings.TrimSpace(in)
		if utf8.RuneCountInString(trimmed) <= DefaultTitleLength {
			if got != trimmed {
				t.Fatalf("expected %q unchanged, got %q", trimmed, got)
			}
			continue
		}
		if n := utf8.RuneCountInString(got); n > DefaultTitleLength+len(titleEllipsis) {
			t.Fatalf("title too long (%d runes): %q", n, got)
		}
		if !strings.HasSuffix(got, titleEllipsis) {
			t.Fatalf("expected ellipsis suffix, got %q", got)
		}
	}
}

func TestDeriveTitle_NonPositiveMaxUsesDefault(t *testing.T) {
	in := strings.Repeat("y", 30)
	if DeriveTitle(in, 0) != DeriveTitle(in, DefaultTitleLength) {
		t.Fatalf("expected default length for maxLength=0")
	}
}
