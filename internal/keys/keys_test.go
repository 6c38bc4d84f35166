package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeHash(s string) string { return "h(" + s + ")" }

func TestPrefix(t *testing.T) {
	require := require.New(t)

	require.Equal("items", Prefix("items/1"))
	require.Equal("items", Prefix("items/1/price"))
	require.Equal("items", Prefix("items"))
	require.Equal("", Prefix("/leading"))
	require.Equal("", Prefix(""))
}

func TestStorageKeyLayout(t *testing.T) {
	require := require.New(t)
	s := Scheme{Namespace: "cache", Hash: fakeHash}

	require.Equal("cache:items:h(items/1)", s.Storage("items/1"))
	require.Equal("cache:users:h(users)", s.Storage("users"))
	require.Equal(s.Storage("items/1"), s.Storage("items/1"))
	require.NotEqual(s.Storage("items/1"), s.Storage("items/2"))
}

func TestBulkPrefixMatchesOnlyItsGroup(t *testing.T) {
	require := require.New(t)
	s := Scheme{Namespace: "cache", Hash: fakeHash}

	bulk := s.Bulk("items")
	require.Equal("cache:items:", bulk)
	require.Equal(bulk, s.Bulk("items/anything"))
	require.True(strings.HasPrefix(s.Storage("items/1"), bulk))
	require.False(strings.HasPrefix(s.Storage("itemsets/1"), bulk))
	require.False(strings.HasPrefix(s.Storage("users/9"), bulk))

	require.Equal("cache:", s.Bulk(""))
	require.Equal(s.Root(), s.Bulk(""))
}

func TestPrefixSeparatorsAreEscaped(t *testing.T) {
	require := require.New(t)
	s := Scheme{Namespace: "cache", Hash: fakeHash}

	require.Equal("cache:items%3Aarchived:h(items:archived/1)", s.Storage("items:archived/1"))
	require.Equal("cache:items%253A:h(items%3A/1)", s.Storage("items%3A/1"))
	require.Equal("cache:items%3Aarchived:", s.Bulk("items:archived"))

	items := s.Bulk("items")
	require.False(strings.HasPrefix(s.Storage("items:archived/1"), items))
	require.NotEqual(s.Bulk("items:archived"), s.Bulk("items%3Aarchived"))
	require.Equal("cache:items:h(items/1)", s.Storage("items/1"))
}
