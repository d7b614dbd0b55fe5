package archive

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"fs":     fsStore,
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			info, err := store.Put(ctx, "archives/c1/a.json", strings.NewReader("payload"), PutOptions{
				ContentType: "application/json",
				Metadata:    map[string]string{"archive-id": "a"},
			})
			require.NoError(t, err)
			assert.Equal(t, "archives/c1/a.json", info.Key)
			assert.Equal(t, int64(len("payload")), info.Size)
			if store.Driver() == DriverFilesystem {
				assert.NotEmpty(t, info.ETag, "filesystem artifacts carry a content hash")
			}

			_, err = store.Put(ctx, "archives/c1/a.json", strings.NewReader("other"), PutOptions{})
			assert.Error(t, err, "artifacts are immutable")

			got, rc, err := store.Get(ctx, "archives/c1/a.json")
			require.NoError(t, err)
			defer rc.Close()
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "payload", string(body))
			assert.Equal(t, "application/json", got.ContentType)
			assert.Equal(t, "a", got.Metadata["archive-id"])
		})
	}
}

func TestHeadAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Put(ctx, "archives/c1/a.json", strings.NewReader("payload"), PutOptions{})
			require.NoError(t, err)

			info, err := store.Head(ctx, "archives/c1/a.json")
			require.NoError(t, err)
			assert.Equal(t, int64(len("payload")), info.Size)

			existed, err := store.Delete(ctx, "archives/c1/a.json")
			require.NoError(t, err)
			assert.True(t, existed)

			_, err = store.Head(ctx, "archives/c1/a.json")
			assert.Error(t, err)

			existed, err = store.Delete(ctx, "archives/c1/a.json")
			require.NoError(t, err)
			assert.False(t, existed, "deleting an absent artifact is a no-op")
		})
	}
}

func TestListFiltersByPrefixSorted(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			keys := []string{
				"archives/c1/b.json",
				"archives/c1/a.json",
				"archives/c2/z.json",
			}
			for _, key := range keys {
				_, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{})
				require.NoError(t, err)
			}

			infos, err := store.List(ctx, "archives/c1/")
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "archives/c1/a.json", infos[0].Key)
			assert.Equal(t, "archives/c1/b.json", infos[1].Key)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestFSStoreKeySanitisation(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Put(ctx, "", strings.NewReader("x"), PutOptions{})
	assert.Error(t, err)
	_, err = store.Put(ctx, ".", strings.NewReader("x"), PutOptions{})
	assert.Error(t, err)

	// Traversal segments collapse inside the root instead of escaping it.
	_, err = store.Put(ctx, "../escape.json", strings.NewReader("x"), PutOptions{})
	require.NoError(t, err)
	_, err = store.Head(ctx, "escape.json")
	assert.NoError(t, err)
}
