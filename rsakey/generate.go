package rsakey

import (
	"crypto/rand"
	"crypto/rsa"
	"math"
	"math/big"

	"github.com/LdDl/rsajwk/jwk"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultBits is the modulus size used when none is requested
	DefaultBits = 2048
	// DefaultPublicExponent is F4
	DefaultPublicExponent = 65537
	// MinBits is the smallest modulus accepted for generation
	MinBits = 1024

	// upper bound on prime search rounds for a non-default exponent
	maxGenerateAttempts = 1000
)

type generateConfig struct {
	kid      string
	kty      string
	bits     int
	exponent int
}

// GenerateOption configures Generate
type GenerateOption func(*generateConfig)

// WithKid sets the key identifier. A random UUID is used when unset.
func WithKid(kid string) GenerateOption {
	return func(c *generateConfig) { c.kid = kid }
}

// WithKeyType sets "RSA" (default) or "RSA-HSM"
func WithKeyType(kty string) GenerateOption {
	return func(c *generateConfig) { c.kty = kty }
}

// WithBits sets the modulus size in bits
func WithBits(bits int) GenerateOption {
	return func(c *generateConfig) { c.bits = bits }
}

// WithPublicExponent sets the public exponent
func WithPublicExponent(e int) GenerateOption {
	return func(c *generateConfig) { c.exponent = e }
}

// Generate creates a fresh private key
func Generate(opts ...GenerateOption) (*Key, error) {
	cfg := generateConfig{
		kty:      jwk.KeyTypeRSA,
		bits:     DefaultBits,
		exponent: DefaultPublicExponent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !isRSAKeyType(cfg.kty) {
		return nil, errors.Wrapf(ErrInvalidKeyType, "kty: %q", cfg.kty)
	}
	if cfg.bits < MinBits {
		return nil, errors.Wrapf(ErrInvalidParameter, "key size %d is below %d bits", cfg.bits, MinBits)
	}
	if cfg.exponent < 3 || cfg.exponent%2 == 0 || cfg.exponent > math.MaxInt32 {
		return nil, errors.Wrapf(ErrInvalidParameter, "public exponent %d must be odd and in [3, 2^31-1]", cfg.exponent)
	}

	var (
		priv *rsa.PrivateKey
		err  error
	)
	if cfg.exponent == DefaultPublicExponent {
		priv, err = rsa.GenerateKey(rand.Reader, cfg.bits)
	} else {
		priv, err = generateWithExponent(cfg.bits, cfg.exponent)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate RSA key")
	}

	kid := cfg.kid
	if kid == "" {
		kid = uuid.New().String()
	}

	keyOps := make([]string, len(PrivateKeyDefaultOps))
	copy(keyOps, PrivateKeyDefaultOps)

	return &Key{
		Kid:     kid,
		KeyOps:  keyOps,
		kty:     cfg.kty,
		public:  &priv.PublicKey,
		private: priv,
	}, nil
}

// generateWithExponent is used for exponents other than 65537, which crypto/rsa does not generate
func generateWithExponent(bits, exponent int) (*rsa.PrivateKey, error) {
	e := big.NewInt(int64(exponent))
	pBits := (bits + 1) / 2
	qBits := bits - pBits

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		p, err := coprimePrime(pBits, e)
		if err != nil {
			return nil, err
		}
		q, err := coprimePrime(qBits, e)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		phi := new(big.Int).Mul(new(big.Int).Sub(p, bigOne), new(big.Int).Sub(q, bigOne))
		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			continue
		}

		// p > q keeps qi = q^-1 mod p well defined in the usual orientation
		if p.Cmp(q) < 0 {
			p, q = q, p
		}

		priv := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: exponent},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		if err := priv.Validate(); err != nil {
			continue
		}
		priv.Precompute()
		return priv, nil
	}
	return nil, errors.Wrapf(ErrInvalidParameter, "could not find primes for exponent %d", exponent)
}

// coprimePrime returns a random prime p of the given size with gcd(e, p-1) = 1
func coprimePrime(bits int, e *big.Int) (*big.Int, error) {
	gcd := new(big.Int)
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		p, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate prime")
		}
		pMinus1 := new(big.Int).Sub(p, bigOne)
		if gcd.GCD(nil, nil, e, pMinus1).Cmp(bigOne) == 0 {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidParameter, "no prime of %d bits coprime with exponent %s", bits, e.String())
}
