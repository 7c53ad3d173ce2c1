package security

import (
	"errors"
	"testing"
)

func TestValidateRedirectURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		production bool
		want       error
	}{
		{name: "plain https", url: "https://shop.example.com", want: nil},
		{name: "plain http", url: "http://example.org/page?q=1", want: nil},
		{name: "ftp scheme", url: "ftp://example.com", want: ErrBadScheme},
		{name: "javascript scheme", url: "javascript:alert(1)", want: ErrBadScheme},
		{name: "missing scheme", url: "example.com/page", want: ErrBadScheme},
		{name: "empty", url: "", want: ErrBadScheme},
		{name: "blocked domain", url: "http://malicious-site.com", want: ErrBlockedDomain},
		{name: "blocked domain https", url: "https://phishing-site.com/login", want: ErrBlockedDomain},
		{name: "blocked domain mixed case", url: "https://MALICIOUS-SITE.com", want: ErrBlockedDomain},
		{name: "blocked tld tk", url: "https://example.tk", want: ErrBlockedTLD},
		{name: "blocked tld ml", url: "http://free.ml/x", want: ErrBlockedTLD},
		{name: "blocked tld ga", url: "http://example.ga", want: ErrBlockedTLD},
		{name: "blocked tld cf", url: "http://example.cf", want: ErrBlockedTLD},
		{name: "localhost in production", url: "http://localhost:3000", production: true, want: ErrPrivateNetwork},
		{name: "loopback ip in production", url: "http://127.0.0.1", production: true, want: ErrPrivateNetwork},
		{name: "unspecified ip in production", url: "http://0.0.0.0:8080", production: true, want: ErrPrivateNetwork},
		{name: "ipv6 loopback in production", url: "http://[::1]/admin", production: true, want: ErrPrivateNetwork},
		{name: "bare ipv4 in production", url: "http://10.0.0.5/internal", production: true, want: ErrPrivateNetwork},
		{name: "loopback ip outside production", url: "http://127.0.0.1", production: false, want: nil},
		{name: "localhost outside production", url: "http://localhost:3000", production: false, want: nil},
		{name: "bare ipv4 outside production", url: "http://192.168.1.1", production: false, want: nil},
		{name: "domain check precedes production checks", url: "https://example.tk", production: true, want: ErrBlockedTLD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRedirectURL(tt.url, tt.production)
			if !errors.Is(got, tt.want) {
				t.Errorf("ValidateRedirectURL(%q, production=%v) = %v, want %v", tt.url, tt.production, got, tt.want)
			}
		})
	}
}

func TestValidateRedirectURL_Deterministic(t *testing.T) {
	// Same input, same answer, every time.
	for i := 0; i < 10; i++ {
		if err := ValidateRedirectURL("https://shop.example.com", true); err != nil {
			t.Fatalf("iteration %d: unexpected error %v", i, err)
		}
		if err := ValidateRedirectURL("https://example.tk", true); !errors.Is(err, ErrBlockedTLD) {
			t.Fatalf("iteration %d: got %v, want ErrBlockedTLD", i, err)
		}
	}
}
