// Package keyring keeps RSA keys addressable by kid and publishes their public halves as a JWK Set.
package keyring

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LdDl/rsajwk/jwk"
	"github.com/LdDl/rsajwk/rsakey"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Sentinel errors
var (
	ErrDuplicateKid = fmt.Errorf("key with this kid already exists")
	ErrKeyNotFound  = fmt.Errorf("key not found")
	ErrNilKey       = fmt.Errorf("key is nil")
)

// Ring is a concurrency-safe set of keys indexed by kid
type Ring struct {
	mu   sync.RWMutex
	keys map[string]*rsakey.Key
}

// New creates an empty ring
func New() *Ring {
	return &Ring{
		keys: make(map[string]*rsakey.Key),
	}
}

// Add stores key and returns its kid. Keys without a kid get a random UUID.
func (r *Ring) Add(key *rsakey.Key) (string, error) {
	if key == nil {
		return "", ErrNilKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if key.Kid == "" {
		key.Kid = uuid.New().String()
	}
	if _, exists := r.keys[key.Kid]; exists {
		return "", errors.Wrapf(ErrDuplicateKid, "kid: %s", key.Kid)
	}
	r.keys[key.Kid] = key
	return key.Kid, nil
}

// Get returns the key registered under kid
func (r *Ring) Get(kid string) (*rsakey.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[kid]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "kid: %s", kid)
	}
	return key, nil
}

// Remove deletes the key registered under kid; it reports whether one was present
func (r *Ring) Remove(kid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.keys[kid]
	delete(r.keys, kid)
	return ok
}

// Len returns the number of keys
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Kids returns all kids in sorted order
func (r *Ring) Kids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kids := make([]string, 0, len(r.keys))
	for kid := range r.keys {
		kids = append(kids, kid)
	}
	sort.Strings(kids)
	return kids
}

// PublicSet exports the public half of every key, ordered by kid
func (r *Ring) PublicSet() (*jwk.Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kids := make([]string, 0, len(r.keys))
	for kid := range r.keys {
		kids = append(kids, kid)
	}
	sort.Strings(kids)

	set := &jwk.Set{Keys: make([]*jwk.JSONWebKey, 0, len(kids))}
	for _, kid := range kids {
		exported, err := r.keys[kid].ToJWK(false)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to export kid %s", kid)
		}
		set.Keys = append(set.Keys, exported)
	}
	return set, nil
}

// ImportSet imports every member of set. Nothing is added if any member fails.
func (r *Ring) ImportSet(set *jwk.Set, opts ...rsakey.ImportOption) ([]string, error) {
	if set == nil {
		return nil, nil
	}

	imported := make([]*rsakey.Key, 0, len(set.Keys))
	seen := make(map[string]struct{}, len(set.Keys))
	for i, src := range set.Keys {
		key, err := rsakey.FromJWK(src, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "key #%d", i)
		}
		if key.Kid == "" {
			key.Kid = uuid.New().String()
		}
		if _, dup := seen[key.Kid]; dup {
			return nil, errors.Wrapf(ErrDuplicateKid, "kid: %s", key.Kid)
		}
		seen[key.Kid] = struct{}{}
		imported = append(imported, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range imported {
		if _, exists := r.keys[key.Kid]; exists {
			return nil, errors.Wrapf(ErrDuplicateKid, "kid: %s", key.Kid)
		}
	}
	kids := make([]string, 0, len(imported))
	for _, key := range imported {
		r.keys[key.Kid] = key
		kids = append(kids, key.Kid)
	}
	return kids, nil
}
