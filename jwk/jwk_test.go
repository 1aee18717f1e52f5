package jwk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -timeout 30s -run ^TestParse$ github.com/LdDl/rsajwk/jwk
func TestParse(t *testing.T) {
	raw := `{"kid":"k1","kty":"RSA","key_ops":["encrypt","verify"],"n":"AQID","e":"AQAB"}`
	key, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "k1", key.Kid)
	assert.Equal(t, KeyTypeRSA, key.Kty)
	assert.Equal(t, []string{OpEncrypt, OpVerify}, key.KeyOps)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, key.N)
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, key.E)
	assert.Empty(t, key.D, "private fields should be absent")

	key, err = Parse([]byte(`{"kty":"RSA","n":"-_8=","e":"AQAB"}`))
	require.NoError(t, err, "padded input should be accepted")
	assert.Equal(t, []byte{0xfb, 0xff}, key.N)

	_, err = Parse([]byte(`{"kty":`))
	assert.Error(t, err)
	_, err = Parse([]byte(`{"kty":"RSA","n":"***","e":"AQAB"}`))
	assert.Error(t, err, "invalid alphabet should fail")
}

// go test -timeout 30s -run ^TestParsePrivate$ github.com/LdDl/rsajwk/jwk
func TestParsePrivate(t *testing.T) {
	raw := `{"kty":"RSA","n":"Dw","e":"Aw","d":"Bw","p":"BQ","q":"Aw","dp":"Aw","dq":"AQ","qi":"Ag"}`
	key, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []byte{0x0f}, key.N)
	assert.Equal(t, []byte{0x07}, key.D)
	assert.Equal(t, []byte{0x05}, key.P)
	assert.Equal(t, []byte{0x03}, key.Q)
	assert.Equal(t, []byte{0x03}, key.DP)
	assert.Equal(t, []byte{0x01}, key.DQ)
	assert.Equal(t, []byte{0x02}, key.QI)
}

// go test -timeout 30s -run ^TestParseKeyTypes$ github.com/LdDl/rsajwk/jwk
func TestParseKeyTypes(t *testing.T) {
	key, err := Parse([]byte(`{"kid":"hsm","kty":"RSA-HSM","n":"AQID","e":"AQAB"}`))
	require.NoError(t, err)
	assert.Equal(t, KeyTypeRSAHSM, key.Kty)
	assert.Equal(t, "hsm", key.Kid)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, key.N)

	// non-RSA keys keep their kty and carry no RSA members
	key, err = Parse([]byte(`{"kty":"oct","k":"AQID"}`))
	require.NoError(t, err)
	assert.Equal(t, "oct", key.Kty)
	assert.Empty(t, key.N)
}

// go test -timeout 30s -run ^TestMarshal$ github.com/LdDl/rsajwk/jwk
func TestMarshal(t *testing.T) {
	data, err := Marshal(&JSONWebKey{Kty: KeyTypeRSA, N: []byte{0x05}, E: []byte{0x03}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kty":"RSA","n":"BQ","e":"Aw"}`, string(data))

	data, err = Marshal(&JSONWebKey{Kty: KeyTypeRSA, N: []byte{0xfb, 0xff}, E: []byte{0x01, 0x00, 0x01}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kty":"RSA","n":"-_8","e":"AQAB"}`, string(data), "should use URL alphabet without padding")

	data, err = Marshal(&JSONWebKey{Kid: "k", Kty: KeyTypeRSAHSM, KeyOps: []string{OpVerify}, N: []byte{0x05}, E: []byte{0x03}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kid":"k","kty":"RSA-HSM","key_ops":["verify"],"n":"BQ","e":"Aw"}`, string(data))

	_, err = Marshal(&JSONWebKey{Kty: "EC"})
	assert.Error(t, err)
	_, err = Marshal(nil)
	assert.Error(t, err)
}

// go test -timeout 30s -run ^TestMarshalPrivateRoundtrip$ github.com/LdDl/rsajwk/jwk
func TestMarshalPrivateRoundtrip(t *testing.T) {
	src := &JSONWebKey{
		Kid:    "priv",
		Kty:    KeyTypeRSA,
		KeyOps: []string{OpSign, OpDecrypt},
		N:      []byte{0x0f},
		E:      []byte{0x03},
		D:      []byte{0x07},
		P:      []byte{0x05},
		Q:      []byte{0x03},
		DP:     []byte{0x03},
		DQ:     []byte{0x01},
		QI:     []byte{0x02},
	}
	data, err := Marshal(src)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, src, parsed)
}

// go test -timeout 30s -run ^TestParseSet$ github.com/LdDl/rsajwk/jwk
func TestParseSet(t *testing.T) {
	raw := `{"keys":[{"kid":"a","kty":"RSA","n":"AQ","e":"AQAB"},{"kid":"b","kty":"RSA-HSM","n":"Ag","e":"AQAB"}]}`
	set, err := ParseSet([]byte(raw))
	require.NoError(t, err)
	require.Len(t, set.Keys, 2)
	assert.Equal(t, "a", set.Keys[0].Kid)
	assert.Equal(t, KeyTypeRSA, set.Keys[0].Kty)
	assert.Equal(t, KeyTypeRSAHSM, set.Keys[1].Kty)
	assert.Equal(t, []byte{0x02}, set.Keys[1].N)

	_, err = ParseSet([]byte(`{"keys":[`))
	assert.Error(t, err)
}

// go test -timeout 30s -run ^TestMarshalSet$ github.com/LdDl/rsajwk/jwk
func TestMarshalSet(t *testing.T) {
	set := &Set{Keys: []*JSONWebKey{
		{Kid: "a", Kty: KeyTypeRSA, N: []byte{0x01}, E: []byte{0x03}},
		{Kid: "b", Kty: KeyTypeRSAHSM, N: []byte{0x02}, E: []byte{0x03}},
	}}
	data, err := MarshalSet(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys":[{"kid":"a","kty":"RSA","n":"AQ","e":"Aw"},{"kid":"b","kty":"RSA-HSM","n":"Ag","e":"Aw"}]}`, string(data))

	parsed, err := ParseSet(data)
	require.NoError(t, err)
	assert.Equal(t, set, parsed)

	_, err = MarshalSet(&Set{Keys: []*JSONWebKey{{Kty: "oct"}}})
	assert.Error(t, err)
}
