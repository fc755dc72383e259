package state

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge-io/worldforge/internal/diff"
	"github.com/worldforge-io/worldforge/internal/profile"
)

func sampleManifest() *diff.Manifest {
	return &diff.Manifest{
		RunID:          "00000000-0000-0000-0000-000000000000",
		GeneratedAt:    "2026-08-30T00:00:00Z",
		WorldAddress:   "0x1234",
		WorldClassHash: "0x1",
		Resources: []diff.ManifestResource{
			{Tag: "arena", Kind: "namespace", Selector: "0x5", Status: "synced"},
			{Tag: "arena-actions", Kind: "contract", Selector: "0x6", ClassHash: "0x10", Address: "0x100", Status: "created"},
		},
	}
}

func TestLocalStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	// Nothing written yet: absent, not an error.
	m, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)

	want := sampleManifest()
	require.NoError(t, store.Write(ctx, want))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(nil, dir)
	require.NoError(t, err)
	assert.NotNil(t, s)

	s, err = NewStore(&profile.StoreConfig{Type: "local", Dir: dir}, ".")
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = NewStore(&profile.StoreConfig{Type: "etcd"}, dir)
	assert.Error(t, err)
}

func TestMarshalManifest_Golden(t *testing.T) {
	data, err := MarshalManifest(sampleManifest())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "manifest", data)
}
