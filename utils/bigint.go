// Package utils provides conversions between big integers and their byte encodings.
package utils

import (
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
)

// IntToBytes returns the minimal big-endian encoding of i.
// Zero (and nil) encodes as a single 0x00 byte. Only the magnitude is encoded.
func IntToBytes(i *big.Int) []byte {
	if i == nil || i.Sign() == 0 {
		return []byte{0x00}
	}
	return new(big.Int).Abs(i).Bytes()
}

// BytesToInt interprets b as an unsigned big-endian integer.
// Leading zero bytes are ignored and empty input yields zero.
func BytesToInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// DecodeHex decodes a hex string, left-padding odd-length input with a zero nibble
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode hex")
	}
	return b, nil
}
