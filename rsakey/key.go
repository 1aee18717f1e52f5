// Package rsakey implements RSA key material that converts to and from JSON
// Web Keys and performs encrypt, decrypt, sign, verify, wrapKey and unwrapKey
// with a per-operation algorithm selection.
package rsakey

import (
	"crypto/rsa"
	"math/big"

	"github.com/LdDl/rsajwk/jwk"
	"github.com/LdDl/rsajwk/utils"
)

var (
	// PublicKeyDefaultOps is advertised on every public export
	PublicKeyDefaultOps = []string{jwk.OpEncrypt, jwk.OpWrapKey, jwk.OpVerify}
	// PrivateKeyDefaultOps is assigned to generated keys
	PrivateKeyDefaultOps = []string{jwk.OpEncrypt, jwk.OpDecrypt, jwk.OpWrapKey, jwk.OpUnwrapKey, jwk.OpVerify, jwk.OpSign}
)

// Key holds either a public RSA key or a public/private pair.
//
// The numeric material never changes after construction, so a Key may be
// used concurrently for cryptographic operations. Kid and KeyOps are plain
// bookkeeping fields and are not synchronized.
type Key struct {
	Kid    string
	KeyOps []string

	kty     string
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// KeyType returns "RSA" or "RSA-HSM"
func (k *Key) KeyType() string {
	return k.kty
}

// IsPrivate reports whether private material is present
func (k *Key) IsPrivate() bool {
	return k.private != nil
}

// PublicKey returns the underlying public key
func (k *Key) PublicKey() *rsa.PublicKey {
	return k.public
}

// PrivateKey returns the underlying private key, if any
func (k *Key) PrivateKey() (*rsa.PrivateKey, bool) {
	return k.private, k.private != nil
}

// Size returns the modulus length in bits
func (k *Key) Size() int {
	return k.public.N.BitLen()
}

// N returns the modulus
func (k *Key) N() []byte {
	return utils.IntToBytes(k.public.N)
}

// E returns the public exponent
func (k *Key) E() []byte {
	return utils.IntToBytes(big.NewInt(int64(k.public.E)))
}

// P returns the first prime factor
func (k *Key) P() ([]byte, bool) {
	if k.private == nil {
		return nil, false
	}
	return utils.IntToBytes(k.private.Primes[0]), true
}

// Q returns the second prime factor
func (k *Key) Q() ([]byte, bool) {
	if k.private == nil {
		return nil, false
	}
	return utils.IntToBytes(k.private.Primes[1]), true
}

// D returns the private exponent
func (k *Key) D() ([]byte, bool) {
	if k.private == nil {
		return nil, false
	}
	return utils.IntToBytes(k.private.D), true
}

// DP returns d mod (p-1) as stored in the key
func (k *Key) DP() ([]byte, bool) {
	if k.private == nil {
		return nil, false
	}
	return utils.IntToBytes(k.private.Precomputed.Dp), true
}

// DQ returns d mod (q-1) as stored in the key
func (k *Key) DQ() ([]byte, bool) {
	if k.private == nil {
		return nil, false
	}
	return utils.IntToBytes(k.private.Precomputed.Dq), true
}

// QI returns q^-1 mod p as stored in the key
func (k *Key) QI() ([]byte, bool) {
	if k.private == nil {
		return nil, false
	}
	return utils.IntToBytes(k.private.Precomputed.Qinv), true
}

func isRSAKeyType(kty string) bool {
	return kty == jwk.KeyTypeRSA || kty == jwk.KeyTypeRSAHSM
}
