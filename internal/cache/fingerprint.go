package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// KeyParams are the request attributes a cached analysis is addressed
// by. Optional fields contribute to the fingerprint only when set, so
// older callers that never send workMode keep their cache hits.
type KeyParams struct {
	JobID       string
	UserID      string
	Location    string
	ProfileHash string
	WorkMode    string
	Currency    string
}

// Fingerprint derives the deterministic cache key: a sha256 over a
// canonicalized, sorted k=v string. Location is case- and
// whitespace-insensitive so "  New York " and "new york" address the
// same entry.
func Fingerprint(params KeyParams) string {
	parts := map[string]string{
		"job":      params.JobID,
		"user":     params.UserID,
		"location": NormalizeLocation(params.Location),
	}
	if params.ProfileHash != "" {
		parts["profile"] = params.ProfileHash
	}
	if params.WorkMode != "" {
		parts["mode"] = strings.ToLower(params.WorkMode)
	}
	if params.Currency != "" {
		parts["currency"] = strings.ToUpper(params.Currency)
	}

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(parts[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// NormalizeLocation lowercases and collapses interior whitespace so
// cosmetic differences never split a cache key.
func NormalizeLocation(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), " ")
}
