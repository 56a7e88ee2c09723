package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
)

// Ensure KVStore implements the interface.
var _ driven.KVStore = (*KVStore)(nil)

// KVStore is an in-memory implementation of driven.KVStore.
// Used for tests and ephemeral runs without local persistence.
type KVStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	sets   map[string]map[string]struct{}
}

// NewKVStore creates a new in-memory key-value store.
func NewKVStore() *KVStore {
	return &KVStore{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

// HashSet stores all fields of a hash record, overwriting any
// existing record under key.
func (s *KVStore) HashSet(_ context.Context, key string, fields map[string]string) error {
	record := make(map[string]string, len(fields))
	for k, v := range fields {
		record[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[key] = record
	return nil
}

// HashGetAll returns every field of the record, or ErrNotFound.
func (s *KVStore) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.hashes[key]
	if !ok {
		return nil, domain.ErrNotFound
	}

	out := make(map[string]string, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, nil
}

// SetAdd adds a member to the set at key, creating it if absent.
func (s *KVStore) SetAdd(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

// SetMembers lists the members of the set at key, sorted for
// deterministic iteration. A missing set yields an empty slice.
func (s *KVStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

// Delete removes a hash record or set. Missing keys are a no-op.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
	delete(s.sets, key)
	return nil
}

// Keys enumerates keys matching a glob pattern ('*' wildcard), in
// lexicographic order.
func (s *KVStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.hashes {
		if matchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	for key := range s.sets {
		if matchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases resources.
func (s *KVStore) Close() error {
	return nil
}

// matchPattern reports whether key matches a glob pattern where '*'
// matches any run of characters. Only '*' is special.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	last := parts[len(parts)-1]
	if !strings.HasSuffix(key, last) {
		return false
	}
	key = key[:len(key)-len(last)]

	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}
	return true
}
