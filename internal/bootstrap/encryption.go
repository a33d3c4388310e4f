package bootstrap

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/alphaleads/leadsearch/internal/data/cryptoutil"
)

// CreateEncryptor builds the AES-GCM encryptor used for executor tokens at
// rest. The key may be given as 64 hex characters (used as the raw 32-byte
// key) or as an arbitrary passphrase (hashed with SHA-256). An empty or
// unusable key degrades to the noop encryptor with a warning so a dev
// environment can run without one.
//
//nolint:ireturn // callers depend on the Encryptor abstraction
func CreateEncryptor(key string, logger *slog.Logger) cryptoutil.Encryptor {
	if key == "" {
		if logger != nil {
			logger.Warn("encryption key is empty, tokens will be stored unencrypted")
		}
		return &cryptoutil.NoopEncryptor{}
	}

	keyBytes := deriveKey(key)
	enc, err := cryptoutil.NewAESGCMEncryptor(keyBytes)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create encryptor, tokens will be stored unencrypted", "error", err)
		}
		return &cryptoutil.NoopEncryptor{}
	}
	return enc
}

func deriveKey(key string) []byte {
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		return decoded
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}
