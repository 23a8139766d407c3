package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

const idPrefix = "doc"

// newRandomID returns doc-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space.
func newRandomID() (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return idPrefix + "-" + suffix, nil
}

// freshID draws random ids until one passes the taken check. The space is
// large enough that collisions are noise, but ids are user-visible so we
// still never hand out a duplicate.
func freshID(taken func(id string) (bool, error)) (string, error) {
	const maxAttempts = 10
	for i := 0; i < maxAttempts; i++ {
		id, err := newRandomID()
		if err != nil {
			return "", fmt.Errorf("generate document id: %w", err)
		}
		exists, err := taken(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate document id: exhausted %d attempts", maxAttempts)
}
