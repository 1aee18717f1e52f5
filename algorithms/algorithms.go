// Package algorithms implements the named RSA algorithms (RSA1_5, RSA-OAEP,
// RSA-OAEP-256, RS256/384/512 and PS256/384/512) as stateless descriptors
// registered in a fixed catalog.
package algorithms

import (
	"crypto"
	"crypto/rsa"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	// hash implementations used by the catalog
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Sentinel errors
var (
	ErrUnknownAlgorithm = fmt.Errorf("unknown algorithm")
	ErrNotApplicable    = fmt.Errorf("algorithm does not support this transform")
	ErrInvalidDigest    = fmt.Errorf("digest length does not match algorithm hash")
	ErrNilKey           = fmt.Errorf("key is nil")
)

// Algorithm names
const (
	RSA1_5     = "RSA1_5"
	RSAOAEP    = "RSA-OAEP"
	RSAOAEP256 = "RSA-OAEP-256"
	RS256      = "RS256"
	RS384      = "RS384"
	RS512      = "RS512"
	PS256      = "PS256"
	PS384      = "PS384"
	PS512      = "PS512"
)

// Kind tells which role an algorithm serves
type Kind int

const (
	// KindEncryption covers encryption and key wrapping
	KindEncryption Kind = iota + 1
	// KindSignature covers signing and verification
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindEncryption:
		return "encryption"
	case KindSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// Transform turns input bytes into output bytes (encryptor or decryptor)
type Transform interface {
	Transform(in []byte) ([]byte, error)
}

// SignatureTransform signs and verifies pre-computed digests.
// Verify returns nil for a valid signature and rsa.ErrVerification (possibly wrapped) on mismatch.
type SignatureTransform interface {
	Sign(digest []byte) ([]byte, error)
	Verify(digest, signature []byte) error
}

// Algorithm is the capability interface every catalog entry implements.
// Transforms an algorithm does not support return ErrNotApplicable.
type Algorithm interface {
	Name() string
	Kind() Kind
	CreateEncryptor(pub *rsa.PublicKey) (Transform, error)
	CreateDecryptor(priv *rsa.PrivateKey) (Transform, error)
	// CreateSignatureTransform binds a public key and an optional private key.
	// A nil private key yields a transform that can only verify.
	CreateSignatureTransform(pub *rsa.PublicKey, priv *rsa.PrivateKey) (SignatureTransform, error)
}

// catalog is built once and never modified
var catalog = map[string]Algorithm{
	RSA1_5:     &encryptionAlgorithm{name: RSA1_5, scheme: schemePKCS1v15},
	RSAOAEP:    &encryptionAlgorithm{name: RSAOAEP, scheme: schemeOAEP, hash: crypto.SHA1},
	RSAOAEP256: &encryptionAlgorithm{name: RSAOAEP256, scheme: schemeOAEP, hash: crypto.SHA256},
	RS256:      &signatureAlgorithm{name: RS256, hash: crypto.SHA256},
	RS384:      &signatureAlgorithm{name: RS384, hash: crypto.SHA384},
	RS512:      &signatureAlgorithm{name: RS512, hash: crypto.SHA512},
	PS256:      &signatureAlgorithm{name: PS256, hash: crypto.SHA256, pss: true},
	PS384:      &signatureAlgorithm{name: PS384, hash: crypto.SHA384, pss: true},
	PS512:      &signatureAlgorithm{name: PS512, hash: crypto.SHA512, pss: true},
}

// Get looks up an algorithm by name
func Get(name string) (Algorithm, error) {
	alg, ok := catalog[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "name: %q", name)
	}
	return alg, nil
}

// Names returns every registered algorithm name, sorted
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HashOf returns the hash function bound to a signature algorithm
func HashOf(name string) (crypto.Hash, bool) {
	alg, ok := catalog[name].(*signatureAlgorithm)
	if !ok {
		return 0, false
	}
	return alg.hash, true
}
