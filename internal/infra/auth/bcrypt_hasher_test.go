package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"gatehouse/config"
)

func testHasher() *bcryptHasher {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := testHasher()

	password := "StrongPass123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongPass123!", hash))
}

func TestBcryptHasher_CheckInvalidHash(t *testing.T) {
	hasher := testHasher()

	assert.False(t, hasher.Check("anything", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Check("anything", ""))
}

func TestBcryptHasher_UniqueSalts(t *testing.T) {
	hasher := testHasher()

	first, err := hasher.Hash("StrongPass123!")
	assert.NoError(t, err)
	second, err := hasher.Hash("StrongPass123!")
	assert.NoError(t, err)

	// Each hash carries its own salt.
	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{}}).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)

	hasher = NewBcryptHasher(nil).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
