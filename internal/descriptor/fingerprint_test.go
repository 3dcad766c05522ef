package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	data := []byte("some file descriptor set bytes")
	assert.Equal(t, Fingerprint(data), Fingerprint(data))
}

func TestFingerprint_DistinguishesInput(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]byte("a")), Fingerprint([]byte("b")))
}
