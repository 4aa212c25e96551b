package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cairn/pkg/domain"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore
// implementation adheres to the defined interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	name := "contract-target-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		record := &domain.RunRecord{
			Fingerprint: "fp-1",
			Status:      domain.StatusOK,
			UpdatedAt:   time.Now().UTC(),
		}

		err := store.Save(ctx, name, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record.Fingerprint, loaded.Fingerprint)
		assert.Equal(t, domain.StatusOK, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		first := &domain.RunRecord{Fingerprint: "fp-a", Status: domain.StatusOK}
		second := &domain.RunRecord{Fingerprint: "fp-b", Status: domain.StatusError, Error: "boom"}

		require.NoError(t, store.Save(ctx, name, first))
		require.NoError(t, store.Save(ctx, name, second))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.Fingerprint("fp-b"), loaded.Fingerprint)
		assert.Equal(t, "boom", loaded.Error)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, &domain.RunRecord{Fingerprint: "fp"}))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, id1, &domain.RunRecord{Fingerprint: "fp1"})
		_ = store.Save(ctx, id2, &domain.RunRecord{Fingerprint: "fp2"})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}

// RunResultStoreContract runs a suite of tests to verify that a ResultStore
// implementation adheres to the defined interface contract.
//
// Values round-trip through the store's serialization, so numeric types may
// come back as float64; assertions use EqualValues where that matters.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	name := "contract-result-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		err := store.Put(ctx, name, map[string]any{"rows": 42, "ok": true})
		require.NoError(t, err, "Put should not return error")

		value, err := store.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")

		m, ok := value.(map[string]any)
		require.True(t, ok, "expected a map, got %T", value)
		assert.EqualValues(t, 42, m["rows"])
		assert.Equal(t, true, m["ok"])
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, name, "value"))
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Get(ctx, name)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, name+"-a", 1))
		require.NoError(t, store.Put(ctx, name+"-b", 2))

		require.NoError(t, store.Clear(ctx))

		_, err := store.Get(ctx, name+"-a")
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
		_, err = store.Get(ctx, name+"-b")
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})
}
