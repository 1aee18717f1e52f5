package rsakey

import (
	"github.com/LdDl/rsajwk/algorithms"
	"github.com/LdDl/rsajwk/jwk"
	"github.com/pkg/errors"
)

var (
	encryptionAlgorithms = []string{algorithms.RSA1_5, algorithms.RSAOAEP, algorithms.RSAOAEP256}
	keyWrapAlgorithms    = []string{algorithms.RSA1_5, algorithms.RSAOAEP, algorithms.RSAOAEP256}
	signatureAlgorithms  = []string{
		algorithms.PS256, algorithms.PS384, algorithms.PS512,
		algorithms.RS256, algorithms.RS384, algorithms.RS512,
	}
)

// supportedAlgorithms lists the RSA catalog per operation
var supportedAlgorithms = map[string][]string{
	jwk.OpEncrypt:   encryptionAlgorithms,
	jwk.OpDecrypt:   encryptionAlgorithms,
	jwk.OpWrapKey:   keyWrapAlgorithms,
	jwk.OpUnwrapKey: keyWrapAlgorithms,
	jwk.OpSign:      signatureAlgorithms,
	jwk.OpVerify:    signatureAlgorithms,
}

// defaultAlgorithms is used when the caller names no algorithm
var defaultAlgorithms = map[string]string{
	jwk.OpEncrypt:   algorithms.RSAOAEP256,
	jwk.OpDecrypt:   algorithms.RSAOAEP256,
	jwk.OpWrapKey:   algorithms.RSAOAEP256,
	jwk.OpUnwrapKey: algorithms.RSAOAEP256,
	jwk.OpSign:      algorithms.RS256,
	jwk.OpVerify:    algorithms.RS256,
}

// SupportedAlgorithms returns the algorithm names an RSA key accepts for op
func SupportedAlgorithms(op string) []string {
	return append([]string(nil), supportedAlgorithms[op]...)
}

// DefaultAlgorithm returns the algorithm used for op when none is named
func DefaultAlgorithm(op string) (string, bool) {
	name, ok := defaultAlgorithms[op]
	return name, ok
}

// SelectAlgorithm resolves the algorithm for op. An empty name selects the default.
func SelectAlgorithm(op, name string) (algorithms.Algorithm, error) {
	supported, ok := supportedAlgorithms[op]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedOperation, "unknown operation %q", op)
	}

	if name == "" {
		name = defaultAlgorithms[op]
	} else if !contains(supported, name) {
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%q is not supported for %s on RSA keys", name, op)
	}

	alg, err := algorithms.Get(name)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%v", err)
	}
	return alg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// algorithmName picks the optional trailing algorithm argument
func algorithmName(alg []string) string {
	if len(alg) == 0 {
		return ""
	}
	return alg[0]
}
