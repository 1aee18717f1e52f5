// Package jwk implements the JSON Web Key carrier (RFC 7517) used to move RSA key material in and out of the library.
//
// The JSON wire form is handled by github.com/lestrrat-go/jwx; this package
// copies the RSA members between jwx keys and the flat JSONWebKey carrier.
package jwk

import (
	"encoding/json"

	jwxjwk "github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
)

// Key types accepted for RSA keys
const (
	KeyTypeRSA    = "RSA"
	KeyTypeRSAHSM = "RSA-HSM"
)

// Key operation names as they appear in "key_ops"
const (
	OpEncrypt   = "encrypt"
	OpDecrypt   = "decrypt"
	OpSign      = "sign"
	OpVerify    = "verify"
	OpWrapKey   = "wrapKey"
	OpUnwrapKey = "unwrapKey"
)

// JSONWebKey is a plain carrier for key material. Byte fields hold
// big-endian integers; empty fields are absent from the JSON form.
type JSONWebKey struct {
	Kid    string
	Kty    string
	KeyOps []string

	// Public part
	N []byte
	E []byte

	// Private part
	D  []byte
	P  []byte
	Q  []byte
	DP []byte
	DQ []byte
	QI []byte
}

// Set is a JWK Set
type Set struct {
	Keys []*JSONWebKey
}

// Parse decodes a single JWK from JSON. Any key type jwx understands is
// accepted; only RSA members are copied into the carrier.
func Parse(data []byte) (*JSONWebKey, error) {
	var member map[string]json.RawMessage
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, errors.Wrap(err, "failed to parse JWK")
	}
	hsm, err := relabelKty(member, KeyTypeRSAHSM, KeyTypeRSA)
	if err != nil {
		return nil, err
	}
	if hsm {
		if data, err = json.Marshal(member); err != nil {
			return nil, errors.Wrap(err, "failed to parse JWK")
		}
	}

	key, err := jwxjwk.ParseKey(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JWK")
	}
	out := fromJWX(key)
	if hsm {
		out.Kty = KeyTypeRSAHSM
	}
	return out, nil
}

// ParseSet decodes a JWK Set from JSON
func ParseSet(data []byte) (*Set, error) {
	var envelope setEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to parse JWK set")
	}
	hsm := make([]bool, len(envelope.Keys))
	relabeled := false
	for i, member := range envelope.Keys {
		ok, err := relabelKty(member, KeyTypeRSAHSM, KeyTypeRSA)
		if err != nil {
			return nil, errors.Wrapf(err, "set member %d", i)
		}
		hsm[i] = ok
		relabeled = relabeled || ok
	}
	if relabeled {
		var err error
		if data, err = json.Marshal(envelope); err != nil {
			return nil, errors.Wrap(err, "failed to parse JWK set")
		}
	}

	parsed, err := jwxjwk.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JWK set")
	}
	set := &Set{Keys: make([]*JSONWebKey, 0, parsed.Len())}
	for i := 0; i < parsed.Len(); i++ {
		key, ok := parsed.Key(i)
		if !ok {
			return nil, errors.Errorf("failed to read JWK set member %d", i)
		}
		out := fromJWX(key)
		if i < len(hsm) && hsm[i] {
			out.Kty = KeyTypeRSAHSM
		}
		set.Keys = append(set.Keys, out)
	}
	return set, nil
}

// Marshal encodes k as JSON. A key with d is written as a jwx RSA private
// key, otherwise as a public key. jwx only accepts the key_ops values
// registered in RFC 7517.
func Marshal(k *JSONWebKey) ([]byte, error) {
	key, err := toJWX(k)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JWK")
	}
	if k.Kty != KeyTypeRSAHSM {
		return data, nil
	}

	var member map[string]json.RawMessage
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, errors.Wrap(err, "failed to marshal JWK")
	}
	if _, err := relabelKty(member, KeyTypeRSA, KeyTypeRSAHSM); err != nil {
		return nil, err
	}
	data, err = json.Marshal(member)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JWK")
	}
	return data, nil
}

// MarshalSet encodes a JWK Set as JSON
func MarshalSet(s *Set) ([]byte, error) {
	if s == nil {
		s = &Set{}
	}
	out := jwxjwk.NewSet()
	hsm := false
	for i, member := range s.Keys {
		key, err := toJWX(member)
		if err != nil {
			return nil, errors.Wrapf(err, "set member %d", i)
		}
		if err := out.AddKey(key); err != nil {
			return nil, errors.Wrapf(err, "set member %d", i)
		}
		hsm = hsm || member.Kty == KeyTypeRSAHSM
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JWK set")
	}
	if !hsm {
		return data, nil
	}

	var envelope setEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to marshal JWK set")
	}
	for i, member := range envelope.Keys {
		if i < len(s.Keys) && s.Keys[i].Kty == KeyTypeRSAHSM {
			if _, err := relabelKty(member, KeyTypeRSA, KeyTypeRSAHSM); err != nil {
				return nil, err
			}
		}
	}
	data, err = json.Marshal(envelope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JWK set")
	}
	return data, nil
}

// setEnvelope exposes set members as raw JSON objects so "RSA-HSM" members
// can be presented to jwx, which only knows "RSA".
type setEnvelope struct {
	Keys []map[string]json.RawMessage `json:"keys"`
}

// relabelKty replaces kty "from" with "to" in place and reports whether it did
func relabelKty(member map[string]json.RawMessage, from, to string) (bool, error) {
	raw, ok := member["kty"]
	if !ok {
		return false, nil
	}
	var kty string
	if err := json.Unmarshal(raw, &kty); err != nil {
		return false, errors.Wrap(err, "kty must be a string")
	}
	if kty != from {
		return false, nil
	}
	replaced, err := json.Marshal(to)
	if err != nil {
		return false, errors.Wrap(err, "failed to encode kty")
	}
	member["kty"] = replaced
	return true, nil
}

func fromJWX(key jwxjwk.Key) *JSONWebKey {
	out := &JSONWebKey{
		Kid: key.KeyID(),
		Kty: key.KeyType().String(),
	}
	for _, op := range key.KeyOps() {
		out.KeyOps = append(out.KeyOps, string(op))
	}

	switch k := key.(type) {
	case jwxjwk.RSAPrivateKey:
		out.N, out.E = k.N(), k.E()
		out.D, out.P, out.Q = k.D(), k.P(), k.Q()
		out.DP, out.DQ, out.QI = k.DP(), k.DQ(), k.QI()
	case jwxjwk.RSAPublicKey:
		out.N, out.E = k.N(), k.E()
	}
	return out
}

func toJWX(k *JSONWebKey) (jwxjwk.Key, error) {
	if k == nil {
		return nil, errors.New("jwk is nil")
	}
	if k.Kty != KeyTypeRSA && k.Kty != KeyTypeRSAHSM {
		return nil, errors.Errorf("cannot encode kty %q", k.Kty)
	}

	type field struct {
		name  string
		value []byte
	}
	var key jwxjwk.Key
	fields := []field{
		{jwxjwk.RSANKey, k.N},
		{jwxjwk.RSAEKey, k.E},
	}
	if len(k.D) > 0 {
		key = jwxjwk.NewRSAPrivateKey()
		fields = append(fields,
			field{jwxjwk.RSADKey, k.D},
			field{jwxjwk.RSAPKey, k.P},
			field{jwxjwk.RSAQKey, k.Q},
			field{jwxjwk.RSADPKey, k.DP},
			field{jwxjwk.RSADQKey, k.DQ},
			field{jwxjwk.RSAQIKey, k.QI},
		)
	} else {
		key = jwxjwk.NewRSAPublicKey()
	}

	for _, f := range fields {
		if len(f.value) == 0 {
			continue
		}
		if err := key.Set(f.name, f.value); err != nil {
			return nil, errors.Wrapf(err, "failed to set %q", f.name)
		}
	}
	if k.Kid != "" {
		if err := key.Set(jwxjwk.KeyIDKey, k.Kid); err != nil {
			return nil, errors.Wrap(err, "failed to set kid")
		}
	}
	if len(k.KeyOps) > 0 {
		if err := key.Set(jwxjwk.KeyOpsKey, k.KeyOps); err != nil {
			return nil, errors.Wrap(err, "failed to set key_ops")
		}
	}
	return key, nil
}
