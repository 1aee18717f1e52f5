package rsakey

import (
	"math/big"

	"github.com/pkg/errors"
)

var bigOne = big.NewInt(1)

// CRTDmp1 computes d mod (p-1)
func CRTDmp1(d, p *big.Int) *big.Int {
	pMinus1 := new(big.Int).Sub(p, bigOne)
	return new(big.Int).Mod(d, pMinus1)
}

// CRTDmq1 computes d mod (q-1)
func CRTDmq1(d, q *big.Int) *big.Int {
	qMinus1 := new(big.Int).Sub(q, bigOne)
	return new(big.Int).Mod(d, qMinus1)
}

// CRTIqmp computes q^-1 mod p
func CRTIqmp(p, q *big.Int) (*big.Int, error) {
	iqmp := new(big.Int).ModInverse(q, p)
	if iqmp == nil {
		return nil, errors.Wrap(ErrInvalidKeyMaterial, "q is not invertible modulo p")
	}
	return iqmp, nil
}

// crtParams holds the three CRT coefficients of a two-prime key
type crtParams struct {
	dp, dq, qi *big.Int
}

// completeCRT keeps supplied values and derives the missing ones.
// With strict set, supplied values must also match the derived ones.
// Without it, consistency is left to (*rsa.PrivateKey).Validate.
func completeCRT(p, q, d, dp, dq, qi *big.Int, strict bool) (crtParams, error) {
	if p.Cmp(bigOne) <= 0 || q.Cmp(bigOne) <= 0 {
		return crtParams{}, errors.Wrap(ErrInvalidKeyMaterial, "primes must be greater than one")
	}

	out := crtParams{dp: dp, dq: dq, qi: qi}

	if dp == nil || strict {
		derived := CRTDmp1(d, p)
		if dp != nil && dp.Cmp(derived) != 0 {
			return crtParams{}, errors.Wrap(ErrInvalidKeyMaterial, "dp does not match d mod (p-1)")
		}
		out.dp = derived
	}
	if dq == nil || strict {
		derived := CRTDmq1(d, q)
		if dq != nil && dq.Cmp(derived) != 0 {
			return crtParams{}, errors.Wrap(ErrInvalidKeyMaterial, "dq does not match d mod (q-1)")
		}
		out.dq = derived
	}
	if qi == nil || strict {
		derived, err := CRTIqmp(p, q)
		if err != nil {
			return crtParams{}, err
		}
		if qi != nil && qi.Cmp(derived) != 0 {
			return crtParams{}, errors.Wrap(ErrInvalidKeyMaterial, "qi does not match q^-1 mod p")
		}
		out.qi = derived
	}
	return out, nil
}
