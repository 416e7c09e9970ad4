package util

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// FlightKey returns a deterministic key for a lookup of keys on field. The
// member order does not matter; members must already be unique.
func FlightKey(field string, keys []string) string {
	s := make([]string, len(keys))
	copy(s, keys)
	sort.Strings(s)
	h := sha256.New()
	h.Write([]byte(strings.Join(s, "\x00")))
	return field + ":" + hex.EncodeToString(h.Sum(nil))
}
