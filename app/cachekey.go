package app

import (
	"crypto/md5"
	"encoding/hex"
)

// GenerateCacheKey derives the storage key for a place identifier
func GenerateCacheKey(placeIdentifier string) string {
	sum := md5.Sum([]byte(placeIdentifier))
	return "cache_" + hex.EncodeToString(sum[:])
}
