package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixUser is the prefix for all per-user keys
	KeyPrefixUser = "shelfmark:user:"
	// KeyPrefixSearchCache is the prefix for cached catalog searches
	KeyPrefixSearchCache = "shelfmark:cache:search:"
)

// BookmarkKey returns the Redis key of the bookmark document for (uid, bookID).
// The document is a hash; field writes merge, unspecified fields survive.
func BookmarkKey(uid, bookID string) string {
	return KeyPrefixUser + uid + ":bookmark:" + bookID
}

// BookmarkIndexKey returns the key of the zset ordering a user's bookmarks
// by updated_at (unix nanoseconds as score).
func BookmarkIndexKey(uid string) string {
	return KeyPrefixUser + uid + ":bookmarks"
}

// EventsChannel returns the pub/sub channel carrying bookmark change events
// for one user.
func EventsChannel(uid string) string {
	return KeyPrefixUser + uid + ":events"
}

// SearchCacheKey returns the Redis key for a cached catalog search.
func SearchCacheKey(query string) string {
	return KeyPrefixSearchCache + query
}

// ParseBookmarkKey extracts (uid, bookID) from a bookmark document key.
func ParseBookmarkKey(key string) (uid, bookID string, err error) {
	rest, ok := strings.CutPrefix(key, KeyPrefixUser)
	if !ok {
		return "", "", fmt.Errorf("invalid bookmark key: %s", key)
	}
	uid, bookID, ok = strings.Cut(rest, ":bookmark:")
	if !ok || uid == "" || bookID == "" {
		return "", "", fmt.Errorf("invalid bookmark key: %s", key)
	}
	return uid, bookID, nil
}

// ParseBookmarkIndexKey extracts the uid from a bookmark index key.
func ParseBookmarkIndexKey(key string) (string, error) {
	rest, ok := strings.CutPrefix(key, KeyPrefixUser)
	if !ok {
		return "", fmt.Errorf("invalid bookmark index key: %s", key)
	}
	uid, ok := strings.CutSuffix(rest, ":bookmarks")
	if !ok || uid == "" {
		return "", fmt.Errorf("invalid bookmark index key: %s", key)
	}
	return uid, nil
}
