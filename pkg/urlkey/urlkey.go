// Package urlkey derives stable, filesystem-safe artifact keys from source URLs.
package urlkey

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

const (
	// keyPrefix marks every derived key so shared directories can be
	// distinguished from unrelated files at a glance.
	keyPrefix = "page"

	// slugMaxLen bounds the human-readable part of the key. The hash suffix
	// carries uniqueness, so truncation never causes collisions.
	slugMaxLen = 48

	// hashLen is the number of hex characters taken from the SHA-256 digest.
	hashLen = 12
)

// Derive returns the stable key for a source URL.
//
// The key has the form "page_<slug>_<hash>" where slug is a sanitized
// host-and-path fragment and hash is a truncated SHA-256 of the normalized
// URL. The same URL always derives the same key, across runs and stages.
func Derive(rawURL string) string {
	normalized := Normalize(rawURL)

	sum := sha256.Sum256([]byte(normalized))
	digest := hex.EncodeToString(sum[:])[:hashLen]

	slug := slugify(normalized)
	if slug == "" {
		return keyPrefix + "_" + digest
	}

	return keyPrefix + "_" + slug + "_" + digest
}

// Normalize canonicalizes a URL string before hashing: surrounding
// whitespace is trimmed, scheme and host are lowercased, and a trailing
// slash on the path is dropped so "http://a.test/" and "http://a.test"
// derive the same key.
func Normalize(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(trimmed, "/")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	return parsed.String()
}

// slugify reduces the URL to a short host_path fragment containing only
// [a-z0-9_-] characters.
func slugify(normalized string) string {
	parsed, err := url.Parse(normalized)
	if err != nil {
		return ""
	}

	raw := parsed.Host + "_" + strings.Trim(parsed.Path, "/")
	raw = strings.ToLower(raw)

	var sb strings.Builder

	lastUnderscore := false

	for _, r := range raw {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			sb.WriteRune(r)

			lastUnderscore = false
		default:
			// Collapse runs of separators into a single underscore.
			if !lastUnderscore {
				sb.WriteRune('_')

				lastUnderscore = true
			}
		}
	}

	slug := strings.Trim(sb.String(), "_")
	if len(slug) > slugMaxLen {
		slug = strings.Trim(slug[:slugMaxLen], "_")
	}

	return slug
}
