package rsakey

import (
	"crypto/rsa"
	"math"
	"math/big"

	"github.com/LdDl/rsajwk/jwk"
	"github.com/LdDl/rsajwk/utils"
	"github.com/pkg/errors"
)

type importConfig struct {
	strictCRT bool
}

// ImportOption configures FromJWK
type ImportOption func(*importConfig)

// WithStrictCRT makes FromJWK compare supplied dp, dq and qi with the values
// derived from p, q and d before the key is assembled, and name the mismatched
// field in the error. Without it the supplied values go to crypto/rsa as they
// are; since Go 1.24 (*rsa.PrivateKey).Validate rejects inconsistent CRT
// values too. Both paths fail with ErrInvalidKeyMaterial.
func WithStrictCRT() ImportOption {
	return func(c *importConfig) { c.strictCRT = true }
}

// FromJWK builds a Key from a JSON Web Key. A private key is built when p, q
// and d are all present; missing dp, dq and qi are derived from them.
func FromJWK(src *jwk.JSONWebKey, opts ...ImportOption) (*Key, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if src == nil {
		return nil, errors.Wrap(ErrInvalidKeyType, "jwk is nil")
	}
	if !isRSAKeyType(src.Kty) {
		return nil, errors.Wrapf(ErrInvalidKeyType, "kty must be %q or %q, got %q", jwk.KeyTypeRSA, jwk.KeyTypeRSAHSM, src.Kty)
	}
	if len(src.N) == 0 || len(src.E) == 0 {
		return nil, errors.Wrap(ErrInvalidKeyMaterial, "both n and e must have values")
	}

	n := utils.BytesToInt(src.N)
	eInt := utils.BytesToInt(src.E)
	if !eInt.IsInt64() || eInt.Int64() > math.MaxInt32 || eInt.Int64() < 2 {
		return nil, errors.Wrapf(ErrInvalidKeyMaterial, "public exponent %s is out of range", eInt.String())
	}
	pub := &rsa.PublicKey{N: n, E: int(eInt.Int64())}

	key := &Key{
		Kid:    src.Kid,
		KeyOps: src.KeyOps,
		kty:    src.Kty,
		public: pub,
	}

	if len(src.P) == 0 || len(src.Q) == 0 || len(src.D) == 0 {
		if n.Sign() <= 0 {
			return nil, errors.Wrap(ErrInvalidKeyMaterial, "modulus must be positive")
		}
		return key, nil
	}

	p := utils.BytesToInt(src.P)
	q := utils.BytesToInt(src.Q)
	d := utils.BytesToInt(src.D)

	crt, err := completeCRT(p, q, d, optionalInt(src.DP), optionalInt(src.DQ), optionalInt(src.QI), cfg.strictCRT)
	if err != nil {
		return nil, err
	}

	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         d,
		Primes:    []*big.Int{p, q},
		Precomputed: rsa.PrecomputedValues{
			Dp:   crt.dp,
			Dq:   crt.dq,
			Qinv: crt.qi,
		},
	}
	if err := priv.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidKeyMaterial, "private key rejected: %v", err)
	}
	priv.Precompute()

	key.public = &priv.PublicKey
	key.private = priv
	return key, nil
}

// ParseJWK decodes JSON and imports it with FromJWK
func ParseJWK(data []byte, opts ...ImportOption) (*Key, error) {
	src, err := jwk.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromJWK(src, opts...)
}

// ToJWK exports the key. Public exports always advertise PublicKeyDefaultOps;
// private exports carry the key's own KeyOps and all private fields.
func (k *Key) ToJWK(includePrivate bool) (*jwk.JSONWebKey, error) {
	if includePrivate && !k.IsPrivate() {
		return nil, errors.Wrap(ErrUnsupportedOperation, "cannot export private fields of a public key")
	}

	out := &jwk.JSONWebKey{
		Kid: k.Kid,
		Kty: k.kty,
		N:   k.N(),
		E:   k.E(),
	}

	if !includePrivate {
		out.KeyOps = append([]string(nil), PublicKeyDefaultOps...)
		return out, nil
	}

	if k.KeyOps != nil {
		out.KeyOps = append([]string(nil), k.KeyOps...)
	}
	out.P, _ = k.P()
	out.Q, _ = k.Q()
	out.D, _ = k.D()
	out.DP, _ = k.DP()
	out.DQ, _ = k.DQ()
	out.QI, _ = k.QI()
	return out, nil
}

// MarshalJWK returns the JSON form of ToJWK
func (k *Key) MarshalJWK(includePrivate bool) ([]byte, error) {
	out, err := k.ToJWK(includePrivate)
	if err != nil {
		return nil, err
	}
	return jwk.Marshal(out)
}

func optionalInt(b []byte) *big.Int {
	if len(b) == 0 {
		return nil
	}
	return utils.BytesToInt(b)
}
