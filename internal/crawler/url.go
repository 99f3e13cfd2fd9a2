package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Canonicalize normalizes a URL into the identity key used for dedup: the
// fragment is stripped, scheme and host are lowercased and default ports
// removed. Non-http(s) URLs and URLs without a host are rejected.
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	return canonicalizeParsed(u)
}

func canonicalizeParsed(u *url.URL) (string, error) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Fragment = ""
	return u.String(), nil
}

// Scope decides whether a candidate URL belongs to the crawled domain.
type Scope struct {
	host              string
	registrable       string
	includeSubdomains bool
}

// NewScope builds a Scope anchored at the seed's host. With subdomains
// enabled, matching requires a label boundary plus an equal registrable
// domain, so a host that merely ends with the seed host's characters never
// qualifies.
func NewScope(seed string, includeSubdomains bool) (*Scope, error) {
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("seed %q has no host", seed)
	}
	s := &Scope{host: host, includeSubdomains: includeSubdomains}
	if reg, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		s.registrable = reg
	}
	return s, nil
}

// Contains reports whether the candidate canonical URL is in scope.
func (s *Scope) Contains(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if host == s.host {
		return true
	}
	if !s.includeSubdomains {
		return false
	}
	if !strings.HasSuffix(host, "."+s.host) {
		return false
	}
	if s.registrable == "" {
		return true
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return reg == s.registrable
}
