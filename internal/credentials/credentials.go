// Package credentials hands out backend API keys and rotates between them
// when one is rejected or exhausted.
package credentials

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// EnvVar is read by EnvStore.
const EnvVar = "THUMBMASK_API_KEYS"

// ErrNoKeys is returned when no key is configured.
var ErrNoKeys = errors.New("no API keys configured")

// Store supplies the configured keys in preference order.
type Store interface {
	Keys() ([]string, error)
}

// EnvStore reads a comma separated key list from the environment.
type EnvStore struct {
	Var string // defaults to EnvVar
}

// Keys implements Store.
func (s EnvStore) Keys() ([]string, error) {
	name := s.Var
	if name == "" {
		name = EnvVar
	}
	return Split(os.Getenv(name)), nil
}

// StaticStore is a fixed key list.
type StaticStore []string

// Keys implements Store.
func (s StaticStore) Keys() ([]string, error) { return append([]string(nil), s...), nil }

// Split parses a comma separated list, dropping blanks and duplicates.
func Split(v string) []string {
	var out []string
	seen := map[string]bool{}
	for _, k := range strings.Split(v, ",") {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Ring cycles through keys. It is safe for concurrent use.
type Ring struct {
	mu   sync.Mutex
	keys []string
	pos  int
}

// NewRing loads keys from s.
func NewRing(s Store) (*Ring, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	return &Ring{keys: keys}, nil
}

// Current returns the active key.
func (r *Ring) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[r.pos]
}

// Rotate advances to the next key and returns it.
func (r *Ring) Rotate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = (r.pos + 1) % len(r.keys)
	return r.keys[r.pos]
}

// Len returns the number of keys.
func (r *Ring) Len() int { return len(r.keys) }

// Hint returns a loggable form of key showing only its last four
// characters.
func Hint(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return "..." + key[len(key)-4:]
}
