package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// KeyVersion prefixes every key built by [Key]. Bump it when the encoding of
// cached payloads changes so that old records are ignored.
const KeyVersion = "v1"

// Key derives a cache key from an operation name and its arguments.
//
// The key format is: v1:op:sha256(json([op, args...])). Arguments are
// encoded as JSON, so map keys are sorted and logically identical calls
// share a key regardless of how their arguments were built. Key panics if
// an argument cannot be encoded as JSON.
func Key(op string, args ...any) string {
	parts := append([]any{op}, args...)
	data, err := json.Marshal(parts)
	if err != nil {
		panic(fmt.Sprintf("cache: key arguments for %q are not JSON encodable: %v", op, err))
	}
	return fmt.Sprintf("%s:%s:%s", KeyVersion, op, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// shardOf picks the shard holding key.
func shardOf(key string) int {
	return int(xxhash.Sum64String(key) % shardCount)
}
