package captioner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrKeysExhausted is returned when every key in the pool has been rotated
// through without a successful request.
var ErrKeysExhausted = errors.New("captioner: all api keys exhausted")

// KeyPool hands out API keys and rotates to the next one when the service
// rejects the current credential. Safe for concurrent use.
type KeyPool struct {
	mu    sync.Mutex
	keys  []string
	index int
}

// NewKeyPool builds a pool from the provided keys, dropping blanks.
func NewKeyPool(keys []string) (*KeyPool, error) {
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("captioner: key pool requires at least one key")
	}
	return &KeyPool{keys: cleaned}, nil
}

// LoadKeyFile reads API keys from a JSON file containing either a bare array
// of strings or an object with a "keys" array.
func LoadKeyFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}
	if len(wrapped.Keys) == 0 {
		return nil, fmt.Errorf("key file %s contains no keys", path)
	}
	return wrapped.Keys, nil
}

// Current returns the key requests should use.
func (p *KeyPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[p.index]
}

// Rotate advances to the next key. It reports false once rotation has cycled
// through every key in the pool, at which point callers should stop retrying.
func (p *KeyPool) Rotate() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) <= 1 {
		return p.keys[p.index], false
	}
	p.index++
	if p.index >= len(p.keys) {
		p.index = 0
		return p.keys[p.index], false
	}
	return p.keys[p.index], true
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
