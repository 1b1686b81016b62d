// Package auth persists per-host credentials for subtitle and resolver hosts in the system keyring.
package auth

import (
	"errors"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

const service = "arflix-cli"

// ErrNotFound is returned when no credential is stored for a host.
var ErrNotFound = keyring.ErrNotFound

// Host normalizes a URL or bare host name into the keyring user name.
func Host(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(raw)
}

// SetToken stores the Authorization header value for host.
func SetToken(host, token string) error {
	return keyring.Set(service, Host(host), token)
}

// Token returns the stored Authorization header value for host.
func Token(host string) (string, error) {
	return keyring.Get(service, Host(host))
}

// DeleteToken removes the stored credential for host.
func DeleteToken(host string) error {
	return keyring.Delete(service, Host(host))
}

// Headers returns the request headers carrying the credential stored for the host of rawURL.
// A missing credential or an unavailable keyring yields no headers.
func Headers(rawURL string) map[string]string {
	token, err := Token(rawURL)
	if err != nil || token == "" {
		return nil
	}
	if !strings.Contains(token, " ") {
		token = "Bearer " + token
	}
	return map[string]string{"Authorization": token}
}

// IsNotFound reports whether err means no credential was stored.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
