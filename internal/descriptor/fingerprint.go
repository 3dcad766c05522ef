package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a stable content hash for a wire-encoded
// FileDescriptorSet, used as the cache and storage key for its parsed
// definition graph.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
