package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const saltLength = 16

// Hash returns a bcrypt hash for newly stored credentials.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plain against a stored hash. Bcrypt hashes are detected by
// prefix; anything else is treated as the legacy "salt:hash" format where
// hash = base64(SHA-256(salt || password)). Accounts migrated from the old
// system keep working without a rehash pass.
func Verify(plain, stored string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	}
	return verifyLegacy(plain, stored)
}

// HashLegacy produces a salt:hash credential in the legacy format with a
// fresh random salt.
func HashLegacy(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	encodedSalt := base64.StdEncoding.EncodeToString(salt)
	return encodedSalt + ":" + legacyDigest(plain, encodedSalt), nil
}

func verifyLegacy(plain, stored string) bool {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	computed := legacyDigest(plain, parts[0])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(parts[1])) == 1
}

func legacyDigest(plain, salt string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(plain))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
