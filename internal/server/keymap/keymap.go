// Package keymap maps (owner identity, logical filename) pairs onto the
// remote store's flat key namespace and back.
//
// Forward mapping concatenates a fixed prefix, the owner identity and the
// logical filename with underscores. Identities are constrained to a safe
// character set by the upstream identity system, so the separator cannot
// appear inside an identity; logical filenames are not sanitized, which
// makes the reverse mapping ambiguous when one filename is a suffix of
// another for the same owner.
package keymap

import (
	"fmt"
	"strings"
)

// Prefix marks remote keys written by this gateway.
const Prefix = "encrypted"

// RemoteKey derives the remote store key for the given owner and logical
// filename.
func RemoteKey(owner, name string) string {
	return fmt.Sprintf("%s_%s_%s", Prefix, owner, name)
}

// Matches reports whether remoteKey represents name owned by owner. The
// membership test is a suffix match on "<owner>_<name>", mirroring how the
// flat listing is searched.
func Matches(remoteKey, owner, name string) bool {
	return strings.HasSuffix(remoteKey, owner+"_"+name)
}

// BelongsTo reports whether remoteKey is namespaced to owner.
func BelongsTo(remoteKey, owner string) bool {
	return strings.Contains(remoteKey, owner+"_")
}

// LogicalName recovers the logical filename from remoteKey for owner: the
// trailing segment after the last occurrence of the owner token joined
// with an underscore. The second return value is false when the key does
// not belong to owner.
func LogicalName(remoteKey, owner string) (string, bool) {
	token := owner + "_"
	i := strings.LastIndex(remoteKey, token)
	if i < 0 {
		return "", false
	}
	return remoteKey[i+len(token):], true
}

// Find scans a flat key listing for the object (owner, name) and returns
// the first matching remote key.
func Find(keys []string, owner, name string) (string, bool) {
	for _, k := range keys {
		if Matches(k, owner, name) {
			return k, true
		}
	}
	return "", false
}

// FilterOwned returns the subset of keys namespaced to owner, preserving
// listing order.
func FilterOwned(keys []string, owner string) []string {
	owned := make([]string, 0, len(keys))
	for _, k := range keys {
		if BelongsTo(k, owner) {
			owned = append(owned, k)
		}
	}
	return owned
}
