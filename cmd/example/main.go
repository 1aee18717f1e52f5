package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"os"

	"github.com/LdDl/rsajwk/algorithms"
	"github.com/LdDl/rsajwk/jwk"
	"github.com/LdDl/rsajwk/keyring"
	"github.com/LdDl/rsajwk/rsakey"
	"github.com/LdDl/rsajwk/utils"
	"github.com/google/uuid"
)

const (
	keyBits = 2048
	keyType = jwk.KeyTypeRSA

	message = "message to be signed and verified"
	// 256-bit content encryption key to wrap
	cekHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	kid := uuid.New().String()
	key, err := rsakey.Generate(rsakey.WithKid(kid), rsakey.WithKeyType(keyType), rsakey.WithBits(keyBits))
	if err != nil {
		slog.Error("failed to generate key", "error", err)
		os.Exit(1)
	}
	slog.Info("key generated", "kid", key.Kid, "kty", key.KeyType(), "bits", key.Size())

	// Publish the public half as it would be handed to a remote key store
	ring := keyring.New()
	if _, err := ring.Add(key); err != nil {
		slog.Error("failed to add key to ring", "error", err)
		os.Exit(1)
	}
	publicJSON, err := key.MarshalJWK(false)
	if err != nil {
		slog.Error("failed to export public key", "error", err)
		os.Exit(1)
	}
	slog.Info("public JWK exported", "jwk", string(publicJSON))

	pub, err := rsakey.ParseJWK(publicJSON)
	if err != nil {
		slog.Error("failed to import public key", "error", err)
		os.Exit(1)
	}
	slog.Info("public JWK imported", "kid", pub.Kid, "private", pub.IsPrivate())

	// Wrap with the public key, unwrap with the private one
	cek, err := utils.DecodeHex(cekHex)
	if err != nil {
		slog.Error("failed to decode CEK", "error", err)
		os.Exit(1)
	}
	wrapped, err := pub.WrapKey(cek)
	if err != nil {
		slog.Error("failed to wrap key", "error", err)
		os.Exit(1)
	}
	unwrapped, err := key.UnwrapKey(wrapped)
	if err != nil {
		slog.Error("failed to unwrap key", "error", err)
		os.Exit(1)
	}
	defaultWrap, _ := rsakey.DefaultAlgorithm(jwk.OpWrapKey)
	slog.Info("key wrapped and unwrapped",
		"algorithm", defaultWrap,
		"wrapped_base64", base64.RawURLEncoding.EncodeToString(wrapped),
		"match", bytes.Equal(unwrapped, cek),
	)

	// Sign with the private key, verify with the public one
	digest := sha256.Sum256([]byte(message))
	for _, alg := range []string{algorithms.RS256, algorithms.PS256} {
		sig, err := key.Sign(digest[:], alg)
		if err != nil {
			slog.Error("failed to sign", "algorithm", alg, "error", err)
			os.Exit(1)
		}
		ok, err := pub.Verify(digest[:], sig, alg)
		if err != nil {
			slog.Error("failed to verify", "algorithm", alg, "error", err)
			os.Exit(1)
		}
		slog.Info("signature checked", "algorithm", alg, "signature_bytes", len(sig), "valid", ok)
	}

	set, err := ring.PublicSet()
	if err != nil {
		slog.Error("failed to export key set", "error", err)
		os.Exit(1)
	}
	setJSON, err := jwk.MarshalSet(set)
	if err != nil {
		slog.Error("failed to encode key set", "error", err)
		os.Exit(1)
	}
	slog.Info("done", "published_keys", len(set.Keys), "jwks", string(setJSON))
}
