package algorithms

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"

	"github.com/pkg/errors"
)

// signatureAlgorithm covers RSASSA-PKCS1-v1_5 (RSxxx) and RSASSA-PSS (PSxxx)
type signatureAlgorithm struct {
	name string
	hash crypto.Hash
	pss  bool
}

func (a *signatureAlgorithm) Name() string { return a.name }

func (a *signatureAlgorithm) Kind() Kind { return KindSignature }

func (a *signatureAlgorithm) CreateEncryptor(*rsa.PublicKey) (Transform, error) {
	return nil, errors.Wrapf(ErrNotApplicable, "%s cannot encrypt", a.name)
}

func (a *signatureAlgorithm) CreateDecryptor(*rsa.PrivateKey) (Transform, error) {
	return nil, errors.Wrapf(ErrNotApplicable, "%s cannot decrypt", a.name)
}

func (a *signatureAlgorithm) CreateSignatureTransform(pub *rsa.PublicKey, priv *rsa.PrivateKey) (SignatureTransform, error) {
	if pub == nil && priv != nil {
		pub = &priv.PublicKey
	}
	if pub == nil {
		return nil, errors.Wrap(ErrNilKey, "signature transform requires a key")
	}
	return &signer{alg: a, pub: pub, priv: priv}, nil
}

type signer struct {
	alg  *signatureAlgorithm
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
}

func (s *signer) checkDigest(digest []byte) error {
	if len(digest) != s.alg.hash.Size() {
		return errors.Wrapf(ErrInvalidDigest, "%s expects %d bytes, got %d", s.alg.name, s.alg.hash.Size(), len(digest))
	}
	return nil
}

func (s *signer) Sign(digest []byte) ([]byte, error) {
	if s.priv == nil {
		return nil, errors.Wrapf(ErrNilKey, "%s signing requires a private key", s.alg.name)
	}
	if err := s.checkDigest(digest); err != nil {
		return nil, err
	}

	var (
		sig []byte
		err error
	)
	if s.alg.pss {
		sig, err = rsa.SignPSS(rand.Reader, s.priv, s.alg.hash, digest, &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
			Hash:       s.alg.hash,
		})
	} else {
		sig, err = rsa.SignPKCS1v15(rand.Reader, s.priv, s.alg.hash, digest)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s signing failed", s.alg.name)
	}
	return sig, nil
}

// Verify reports a malformed digest with ErrInvalidDigest; any other failure is rsa.ErrVerification
func (s *signer) Verify(digest, signature []byte) error {
	if err := s.checkDigest(digest); err != nil {
		return err
	}

	var err error
	if s.alg.pss {
		err = rsa.VerifyPSS(s.pub, s.alg.hash, digest, signature, &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthAuto,
			Hash:       s.alg.hash,
		})
	} else {
		err = rsa.VerifyPKCS1v15(s.pub, s.alg.hash, digest, signature)
	}
	if err != nil {
		return errors.Wrapf(rsa.ErrVerification, "%s: %v", s.alg.name, err)
	}
	return nil
}
