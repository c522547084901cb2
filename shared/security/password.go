package security

import (
	"github.com/matthewhartstonge/argon2"
)

// HashPassword derives a salted argon2id digest of the given password.
func HashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()

	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded digest.
// An empty digest never matches.
func VerifyPassword(password, encoded string) (bool, error) {
	if encoded == "" {
		return false, nil
	}

	return argon2.VerifyEncoded([]byte(password), []byte(encoded))
}
