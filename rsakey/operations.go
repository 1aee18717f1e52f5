package rsakey

import (
	"crypto/rsa"

	"github.com/LdDl/rsajwk/jwk"
	"github.com/pkg/errors"
)

// Encrypt encrypts plaintext with the public key.
// The algorithm defaults to RSA-OAEP-256; pass a name to override it.
func (k *Key) Encrypt(plaintext []byte, alg ...string) ([]byte, error) {
	return k.publicTransform(jwk.OpEncrypt, plaintext, alg)
}

// Decrypt decrypts ciphertext. Requires private material.
func (k *Key) Decrypt(ciphertext []byte, alg ...string) ([]byte, error) {
	return k.privateTransform(jwk.OpDecrypt, ciphertext, alg)
}

// WrapKey encrypts a symmetric key with the public key
func (k *Key) WrapKey(key []byte, alg ...string) ([]byte, error) {
	return k.publicTransform(jwk.OpWrapKey, key, alg)
}

// UnwrapKey decrypts a wrapped symmetric key. Requires private material.
func (k *Key) UnwrapKey(wrapped []byte, alg ...string) ([]byte, error) {
	return k.privateTransform(jwk.OpUnwrapKey, wrapped, alg)
}

// Sign signs a pre-computed digest. The algorithm defaults to RS256.
func (k *Key) Sign(digest []byte, alg ...string) ([]byte, error) {
	if !k.IsPrivate() {
		return nil, errors.Wrap(ErrUnsupportedOperation, "the current key does not support sign")
	}
	algorithm, err := SelectAlgorithm(jwk.OpSign, algorithmName(alg))
	if err != nil {
		return nil, err
	}
	st, err := algorithm.CreateSignatureTransform(k.public, k.private)
	if err != nil {
		return nil, err
	}
	return st.Sign(digest)
}

// Verify checks signature over digest. A signature that does not match is
// reported as false with a nil error; only malformed input returns an error.
func (k *Key) Verify(digest, signature []byte, alg ...string) (bool, error) {
	algorithm, err := SelectAlgorithm(jwk.OpVerify, algorithmName(alg))
	if err != nil {
		return false, err
	}
	st, err := algorithm.CreateSignatureTransform(k.public, nil)
	if err != nil {
		return false, err
	}
	err = st.Verify(digest, signature)
	if errors.Is(err, rsa.ErrVerification) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (k *Key) publicTransform(op string, in []byte, alg []string) ([]byte, error) {
	algorithm, err := SelectAlgorithm(op, algorithmName(alg))
	if err != nil {
		return nil, err
	}
	enc, err := algorithm.CreateEncryptor(k.public)
	if err != nil {
		return nil, err
	}
	return enc.Transform(in)
}

func (k *Key) privateTransform(op string, in []byte, alg []string) ([]byte, error) {
	if !k.IsPrivate() {
		return nil, errors.Wrapf(ErrUnsupportedOperation, "the current key does not support %s", op)
	}
	algorithm, err := SelectAlgorithm(op, algorithmName(alg))
	if err != nil {
		return nil, err
	}
	dec, err := algorithm.CreateDecryptor(k.private)
	if err != nil {
		return nil, err
	}
	return dec.Transform(in)
}
