package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixLink is the prefix for link record keys
	KeyPrefixLink = "linkjump:link:"
	// KeyPrefixOutcome is the prefix for cached resolution outcomes
	KeyPrefixOutcome = "linkjump:outcome:"
	// KeyAllLinks is the key for the set of all link IDs
	KeyAllLinks = "linkjump:links:all"
	// KeyClicks is the hash of click counters, field = link ID
	KeyClicks = "linkjump:clicks"
)

// LinkKey returns the Redis key for a link record by ID
func LinkKey(id string) string {
	return KeyPrefixLink + id
}

// OutcomeKey returns the Redis key for the cached outcome of a link on a device.
// Device names are lowercased so "Pixel" and "pixel" share entries.
func OutcomeKey(device, linkID string, fallbackToStore bool) string {
	mode := "nofallback"
	if fallbackToStore {
		mode = "fallback"
	}
	return KeyPrefixOutcome + strings.ToLower(device) + ":" + mode + ":" + linkID
}

// AllLinksKey returns the key for the set of all link IDs
func AllLinksKey() string {
	return KeyAllLinks
}

// ExtractLinkID extracts the link ID from a Redis key
func ExtractLinkID(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixLink) || len(key) == len(KeyPrefixLink) {
		return "", fmt.Errorf("invalid link key: %s", key)
	}
	return key[len(KeyPrefixLink):], nil
}
