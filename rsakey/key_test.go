package rsakey

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/LdDl/rsajwk/jwk"
	"github.com/LdDl/rsajwk/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKeyOnce sync.Once
	testKey     *Key
	testKeyErr  error
)

// createTestKey returns a 2048-bit private key shared by the package tests
func createTestKey(t *testing.T) *Key {
	testKeyOnce.Do(func() {
		testKey, testKeyErr = Generate(WithKid("test-key"))
	})
	require.NoError(t, testKeyErr, "Failed to generate key")
	return testKey
}

func createTestPublicKey(t *testing.T) *Key {
	exported, err := createTestKey(t).ToJWK(false)
	require.NoError(t, err)
	pub, err := FromJWK(exported)
	require.NoError(t, err)
	return pub
}

func privateField(t *testing.T, get func() ([]byte, bool)) []byte {
	b, ok := get()
	require.True(t, ok, "private field should be present")
	return b
}

// go test -timeout 30s -run ^TestGenerateDefaults$ github.com/LdDl/rsajwk/rsakey
func TestGenerateDefaults(t *testing.T) {
	key := createTestKey(t)

	assert.True(t, key.IsPrivate())
	assert.Equal(t, DefaultBits, key.Size())
	assert.Equal(t, jwk.KeyTypeRSA, key.KeyType())
	assert.Equal(t, "test-key", key.Kid)
	assert.Equal(t, PrivateKeyDefaultOps, key.KeyOps)
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, key.E())

	priv, ok := key.PrivateKey()
	require.True(t, ok)
	assert.Same(t, &priv.PublicKey, key.PublicKey())
}

// go test -timeout 60s -run ^TestGenerateAssignsKid$ github.com/LdDl/rsajwk/rsakey
func TestGenerateAssignsKid(t *testing.T) {
	key, err := Generate(WithBits(MinBits), WithKeyType(jwk.KeyTypeRSAHSM))
	require.NoError(t, err)

	_, err = uuid.Parse(key.Kid)
	assert.NoError(t, err, "generated kid should be a UUID")
	assert.Equal(t, jwk.KeyTypeRSAHSM, key.KeyType())
	assert.Equal(t, MinBits, key.Size())

	key.KeyOps[0] = "changed"
	assert.Equal(t, jwk.OpEncrypt, PrivateKeyDefaultOps[0], "generated keys should not share the default ops slice")
}

// go test -timeout 60s -run ^TestGenerateCustomExponent$ github.com/LdDl/rsajwk/rsakey
func TestGenerateCustomExponent(t *testing.T) {
	key, err := Generate(WithBits(MinBits), WithPublicExponent(3))
	require.NoError(t, err)

	assert.Equal(t, []byte{0x03}, key.E())
	assert.Equal(t, MinBits, key.Size())
	assertKeyInvariants(t, key)

	data := []byte("custom exponent roundtrip")
	ciphertext, err := key.Encrypt(data)
	require.NoError(t, err)
	plaintext, err := key.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, data, plaintext)
}

// go test -timeout 30s -run ^TestGenerateInvalidParameter$ github.com/LdDl/rsajwk/rsakey
func TestGenerateInvalidParameter(t *testing.T) {
	_, err := Generate(WithBits(512))
	assert.True(t, errors.Is(err, ErrInvalidParameter), "512 bits should be rejected")

	for _, e := range []int{-3, 0, 1, 2, 4, 65536} {
		_, err = Generate(WithPublicExponent(e))
		assert.True(t, errors.Is(err, ErrInvalidParameter), "exponent %d should be rejected", e)
	}

	_, err = Generate(WithKeyType("EC"))
	assert.True(t, errors.Is(err, ErrInvalidKeyType))
}

// go test -timeout 30s -run ^TestKeyInvariants$ github.com/LdDl/rsajwk/rsakey
func TestKeyInvariants(t *testing.T) {
	assertKeyInvariants(t, createTestKey(t))
}

func assertKeyInvariants(t *testing.T, key *Key) {
	n := utils.BytesToInt(key.N())
	e := utils.BytesToInt(key.E())
	p := utils.BytesToInt(privateField(t, key.P))
	q := utils.BytesToInt(privateField(t, key.Q))
	d := utils.BytesToInt(privateField(t, key.D))

	assert.Equal(t, 0, n.Cmp(new(big.Int).Mul(p, q)), "n should equal p*q")

	de := new(big.Int).Mul(d, e)
	for _, prime := range []*big.Int{p, q} {
		m := new(big.Int).Sub(prime, big.NewInt(1))
		assert.Equal(t, int64(1), new(big.Int).Mod(de, m).Int64(), "d*e should be 1 modulo each prime minus one")
	}
}

// go test -timeout 30s -run ^TestPublicKeyAccessors$ github.com/LdDl/rsajwk/rsakey
func TestPublicKeyAccessors(t *testing.T) {
	pub := createTestPublicKey(t)

	assert.False(t, pub.IsPrivate())
	assert.Equal(t, createTestKey(t).N(), pub.N())

	accessors := map[string]func() ([]byte, bool){
		"p": pub.P, "q": pub.Q, "d": pub.D, "dp": pub.DP, "dq": pub.DQ, "qi": pub.QI,
	}
	for name, get := range accessors {
		value, ok := get()
		assert.False(t, ok, "%s should be absent on a public key", name)
		assert.Nil(t, value, "%s should not be fabricated", name)
	}

	priv, ok := pub.PrivateKey()
	assert.False(t, ok)
	assert.Nil(t, priv)
}
