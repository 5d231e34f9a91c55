package instance

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// keyPrefix marks instance keys so they are recognizable in logs and config.
const keyPrefix = "key_"

// GenerateKey creates a random bearer key for an instance.
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate instance key: %w", err)
	}
	return keyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// digest is the registry index for a key; raw keys are not kept as map keys.
type digest [blake2b.Size256]byte

func keyDigest(key string) digest {
	return blake2b.Sum256([]byte(key))
}
