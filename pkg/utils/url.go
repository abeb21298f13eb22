package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"

	"github.com/rotisserie/eris"
)

// HashURL creates a SHA256 hash of a string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL resolves ref against base. An already absolute ref is
// returned exactly as given.
func ToAbsoluteURL(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", eris.Wrapf(err, "parse url %q", ref)
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", eris.Wrapf(err, "parse base url %q", base)
	}
	if !baseURL.IsAbs() {
		return "", eris.Errorf("base url %q is not absolute", base)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
