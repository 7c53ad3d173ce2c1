package shortcode

import (
	"testing"
)

func TestValidCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{name: "simple alphanumeric", code: "promo1", valid: true},
		{name: "mixed case", code: "AbC123", valid: true},
		{name: "hyphen and underscore", code: "my-code_1", valid: true},
		{name: "minimum length 3", code: "abc", valid: true},
		{name: "maximum length 20", code: "a1234567890123456789", valid: true},
		{name: "empty", code: "", valid: false},
		{name: "too short", code: "ab", valid: false},
		{name: "too long", code: "a12345678901234567890", valid: false},
		{name: "contains space", code: "ab c", valid: false},
		{name: "contains slash", code: "ab/c", valid: false},
		{name: "contains dot", code: "ab.c", valid: false},
		{name: "unicode", code: "абв", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCode(tt.code); got != tt.valid {
				t.Errorf("ValidCode(%q) = %v, want %v", tt.code, got, tt.valid)
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name  string
		slug  string
		valid bool
	}{
		{name: "simple", slug: "coffee-shop", valid: true},
		{name: "digits", slug: "room-101", valid: true},
		{name: "minimum length 3", slug: "abc", valid: true},
		{name: "uppercase rejected", slug: "Coffee", valid: false},
		{name: "underscore rejected", slug: "my_wifi", valid: false},
		{name: "too short", slug: "ab", valid: false},
		{name: "empty", slug: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSlug(tt.slug); got != tt.valid {
				t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, got, tt.valid)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	if got := NormalizeSlug("  Coffee-Shop "); got != "coffee-shop" {
		t.Errorf("NormalizeSlug() = %q, want %q", got, "coffee-shop")
	}
	if !ValidSlug(NormalizeSlug("GUEST-WIFI")) {
		t.Error("normalized slug should pass validation")
	}
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := Generate()
		if len(code) != GeneratedLength {
			t.Fatalf("Generate() length = %d, want %d", len(code), GeneratedLength)
		}
		if !ValidCode(code) {
			t.Fatalf("Generate() produced invalid code %q", code)
		}
		if seen[code] {
			t.Fatalf("Generate() produced duplicate code %q", code)
		}
		seen[code] = true
	}
}
