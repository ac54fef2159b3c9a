package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBlobStoreContract runs a suite of tests to verify that a BlobStore implementation
// adheres to the defined interface contract.
func RunBlobStoreContract(t *testing.T, store BlobStore) {
	ctx := context.Background()
	anchor := "contract-test-anchor-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		blob := []byte("QPEN\x08\x02")

		err := store.Save(ctx, anchor, blob)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, anchor)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, blob, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, anchor, []byte("first")))
		require.NoError(t, store.Save(ctx, anchor, []byte("second")))

		loaded, err := store.Load(ctx, anchor)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)
	})

	t.Run("Binary Safe", func(t *testing.T) {
		blob := []byte{0x00, 0xff, 0x0a, 0x0d, 0x00}
		require.NoError(t, store.Save(ctx, anchor, blob))

		loaded, err := store.Load(ctx, anchor)
		require.NoError(t, err)
		assert.Equal(t, blob, loaded)
	})

	t.Run("Caller Cannot Mutate Stored Blob", func(t *testing.T) {
		blob := []byte("abc")
		require.NoError(t, store.Save(ctx, anchor, blob))
		blob[0] = 'z'

		loaded, err := store.Load(ctx, anchor)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+anchor)
		assert.ErrorIs(t, err, domain.ErrAnchorNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, anchor, []byte("x")))

		anchors, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, anchors, anchor)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, anchor, []byte("x")))

		err := store.Delete(ctx, anchor)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, anchor)
		assert.ErrorIs(t, err, domain.ErrAnchorNotFound)

		anchors, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, anchors, anchor)

		// Deleting twice is not an error.
		assert.NoError(t, store.Delete(ctx, anchor))
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("%s-%d", anchor, i)
				assert.NoError(t, store.Save(ctx, name, []byte(name)))
				loaded, err := store.Load(ctx, name)
				assert.NoError(t, err)
				assert.Equal(t, []byte(name), loaded)
				assert.NoError(t, store.Delete(ctx, name))
			}(i)
		}
		wg.Wait()
	})
}
