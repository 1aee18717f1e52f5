package algorithms

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"

	"github.com/pkg/errors"
)

type paddingScheme int

const (
	schemePKCS1v15 paddingScheme = iota
	schemeOAEP
)

// encryptionAlgorithm covers RSA1_5 and the RSA-OAEP variants
type encryptionAlgorithm struct {
	name   string
	scheme paddingScheme
	// OAEP hash, unused for PKCS#1 v1.5
	hash crypto.Hash
}

func (a *encryptionAlgorithm) Name() string { return a.name }

func (a *encryptionAlgorithm) Kind() Kind { return KindEncryption }

func (a *encryptionAlgorithm) CreateEncryptor(pub *rsa.PublicKey) (Transform, error) {
	if pub == nil {
		return nil, errors.Wrap(ErrNilKey, "encryptor requires a public key")
	}
	return &encryptor{alg: a, pub: pub}, nil
}

func (a *encryptionAlgorithm) CreateDecryptor(priv *rsa.PrivateKey) (Transform, error) {
	if priv == nil {
		return nil, errors.Wrap(ErrNilKey, "decryptor requires a private key")
	}
	return &decryptor{alg: a, priv: priv}, nil
}

func (a *encryptionAlgorithm) CreateSignatureTransform(*rsa.PublicKey, *rsa.PrivateKey) (SignatureTransform, error) {
	return nil, errors.Wrapf(ErrNotApplicable, "%s cannot sign", a.name)
}

type encryptor struct {
	alg *encryptionAlgorithm
	pub *rsa.PublicKey
}

func (e *encryptor) Transform(plaintext []byte) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch e.alg.scheme {
	case schemeOAEP:
		out, err = rsa.EncryptOAEP(e.alg.hash.New(), rand.Reader, e.pub, plaintext, nil)
	default:
		out, err = rsa.EncryptPKCS1v15(rand.Reader, e.pub, plaintext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s encryption failed", e.alg.name)
	}
	return out, nil
}

type decryptor struct {
	alg  *encryptionAlgorithm
	priv *rsa.PrivateKey
}

func (d *decryptor) Transform(ciphertext []byte) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch d.alg.scheme {
	case schemeOAEP:
		out, err = rsa.DecryptOAEP(d.alg.hash.New(), rand.Reader, d.priv, ciphertext, nil)
	default:
		out, err = rsa.DecryptPKCS1v15(rand.Reader, d.priv, ciphertext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s decryption failed", d.alg.name)
	}
	return out, nil
}
