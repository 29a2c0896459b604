package ssi

import (
	"strings"
	"sync"

	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/errcode"
)

// KeyStore keeps the private keys generated for each DID contract in a
// thread-safe manner.
type KeyStore struct {
	keys map[string]map[did.Purpose]string
	mu   sync.RWMutex
}

// NewKeyStore initializes an empty KeyStore
func NewKeyStore() *KeyStore {
	return &KeyStore{
		keys: make(map[string]map[did.Purpose]string),
	}
}

// Put stores keys for the contract at addr, replacing keys of the same
// purpose.
func (s *KeyStore) Put(addr string, keys map[did.Purpose]string) {
	addr = strings.ToLower(addr)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.keys[addr]
	if !ok {
		m = make(map[did.Purpose]string, len(keys))
		s.keys[addr] = m
	}
	for p, k := range keys {
		m[p] = k
	}
}

// Get retrieves the key of purpose for the contract at addr
func (s *KeyStore) Get(addr string, purpose did.Purpose) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[strings.ToLower(addr)][purpose]
	if !ok {
		return "", errcode.Newf(errcode.NotFound, "no %s key stored for %s", purpose, addr)
	}
	return k, nil
}

// Delete removes every key of the contract at addr
func (s *KeyStore) Delete(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, strings.ToLower(addr))
}

// Addresses lists the contracts with stored keys
func (s *KeyStore) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.keys))
	for addr := range s.keys {
		out = append(out, addr)
	}
	return out
}
