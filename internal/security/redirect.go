package security

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// Classification errors for redirect targets. Handlers must surface these as
// explicit refusals, never as a silent redirect or a generic failure.
var (
	ErrBadScheme      = errors.New("redirect target must use http or https")
	ErrBlockedDomain  = errors.New("redirect target domain is blocked")
	ErrBlockedTLD     = errors.New("redirect target TLD is blocked")
	ErrPrivateNetwork = errors.New("redirect target points to a private network")
)

// Domains known to serve malicious content. Exact hostname match.
var blockedDomains = map[string]struct{}{
	"malicious-site.com": {},
	"phishing-site.com":  {},
}

// TLDs commonly used for abuse.
var blockedTLDs = []string{".tk", ".ml", ".ga", ".cf"}

var loopbackHosts = []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}

var ipv4Re = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// ValidateRedirectURL classifies rawURL as a safe or unsafe automatic
// redirect target. It is a pure function of its arguments: no I/O, no state.
// Checks run in a fixed order and the first failure wins. The loopback and
// bare-IP checks only apply in production so local setups stay testable.
func ValidateRedirectURL(rawURL string, production bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrBadScheme
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrBadScheme
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ErrBadScheme
	}

	if _, blocked := blockedDomains[host]; blocked {
		return ErrBlockedDomain
	}

	for _, tld := range blockedTLDs {
		if strings.HasSuffix(host, tld) {
			return ErrBlockedTLD
		}
	}

	if production {
		for _, loopback := range loopbackHosts {
			if host == loopback {
				return ErrPrivateNetwork
			}
		}
		if ipv4Re.MatchString(host) {
			return ErrPrivateNetwork
		}
	}

	return nil
}
