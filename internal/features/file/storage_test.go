package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"crm-reports/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorageLifecycle(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/fs/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	f, err := store.Put(ctx, "reports/leads-20240101.csv", []byte("a,b\r\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "/fs/uploads/reports/leads-20240101.csv", f.URL)
	assert.Equal(t, int64(5), f.Size)
	assert.Equal(t, StorageTypeLocal, f.StorageType)
	assert.FileExists(t, filepath.Join(root, "reports", "leads-20240101.csv"))

	data, err := store.Get(ctx, "reports/leads-20240101.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n", string(data))

	require.NoError(t, store.Delete(ctx, "reports/leads-20240101.csv"))
	require.NoError(t, store.Delete(ctx, "reports/leads-20240101.csv"))

	_, err = store.Get(ctx, "reports/leads-20240101.csv")
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestLocalStorageKeepsKeysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(root, "inner"), "/fs")
	require.NoError(t, err)

	f, err := store.Put(context.Background(), "../../escape.csv", []byte("x"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "inner", "escape.csv"), f.Path)

	_, err = os.Stat(filepath.Join(root, "escape.csv"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Put(context.Background(), "", []byte("x"), "text/csv")
	assert.Error(t, err)
}

func TestNewStorageModes(t *testing.T) {
	cfg := &config.Config{StorageMode: "local", FSPath: t.TempDir(), FSURL: "/fs"}
	store, err := NewStorage(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, StorageTypeLocal, store.Type())

	_, err = NewStorage(&config.Config{StorageMode: "s3"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStorage(&config.Config{StorageMode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
