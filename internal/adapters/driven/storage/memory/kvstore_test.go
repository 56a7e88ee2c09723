package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

func TestKVStore_HashRoundTrip(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	fields := map[string]string{"content": "hello", "chunk_index": "0"}
	require.NoError(t, store.HashSet(ctx, "doc-1:doc-1_chunk_0", fields))

	got, err := store.HashGetAll(ctx, "doc-1:doc-1_chunk_0")
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestKVStore_HashSet_Overwrites(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	require.NoError(t, store.HashSet(ctx, "k", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, store.HashSet(ctx, "k", map[string]string{"a": "9"}))

	got, err := store.HashGetAll(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "9"}, got)
}

func TestKVStore_HashGetAll_Missing(t *testing.T) {
	store := NewKVStore()

	_, err := store.HashGetAll(context.Background(), "absent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVStore_HashGetAll_ReturnsCopy(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	require.NoError(t, store.HashSet(ctx, "k", map[string]string{"a": "1"}))

	got, err := store.HashGetAll(ctx, "k")
	require.NoError(t, err)
	got["a"] = "mutated"

	again, err := store.HashGetAll(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", again["a"])
}

func TestKVStore_SetAddAndMembers(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	require.NoError(t, store.SetAdd(ctx, "doc-1:chunks", "c1"))
	require.NoError(t, store.SetAdd(ctx, "doc-1:chunks", "c0"))
	require.NoError(t, store.SetAdd(ctx, "doc-1:chunks", "c1")) // duplicate

	members, err := store.SetMembers(ctx, "doc-1:chunks")
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c1"}, members)
}

func TestKVStore_SetMembers_MissingSet(t *testing.T) {
	store := NewKVStore()

	members, err := store.SetMembers(context.Background(), "absent")

	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	require.NoError(t, store.HashSet(ctx, "h", map[string]string{"a": "1"}))
	require.NoError(t, store.SetAdd(ctx, "s", "m"))

	require.NoError(t, store.Delete(ctx, "h"))
	require.NoError(t, store.Delete(ctx, "s"))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, err := store.HashGetAll(ctx, "h")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	members, err := store.SetMembers(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestKVStore_Keys_Pattern(t *testing.T) {
	store := NewKVStore()
	ctx := context.Background()

	require.NoError(t, store.HashSet(ctx, "doc-1:doc-1_chunk_0", map[string]string{"a": "1"}))
	require.NoError(t, store.HashSet(ctx, "doc-1:doc-1_chunk_1", map[string]string{"a": "1"}))
	require.NoError(t, store.HashSet(ctx, "doc-2:doc-2_chunk_0", map[string]string{"a": "1"}))
	require.NoError(t, store.SetAdd(ctx, "doc-1:chunks", "doc-1_chunk_0"))

	records, err := store.Keys(ctx, "*_chunk_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1:doc-1_chunk_0", "doc-1:doc-1_chunk_1", "doc-2:doc-2_chunk_0"}, records)

	sets, err := store.Keys(ctx, "*:chunks")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1:chunks"}, sets)

	exact, err := store.Keys(ctx, "doc-1:chunks")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1:chunks"}, exact)
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*", "anything", true},
		{"a*c", "abc", true},
		{"a*c", "ac", true},
		{"a*c", "abd", false},
		{"*:chunks", "doc-1:chunks", true},
		{"*:chunks", "doc-1:doc-1_chunk_0", false},
		{"*_chunk_*", "doc-1:doc-1_chunk_4", true},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPattern(tt.pattern, tt.key),
			"pattern %q against %q", tt.pattern, tt.key)
	}
}
