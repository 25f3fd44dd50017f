package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/pkg/storage"
)

func TestArchiveServiceStoresInBackground(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	svc := NewArchiveService(store, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	require.NoError(t, svc.Store("timetable-test.csv", []byte("Day,Start\n")))

	path := filepath.Join(dir, "timetable-test.csv")
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Day,Start\n", string(content))
}

func TestArchiveServiceRejectsStoreBeforeStart(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := NewArchiveService(store, time.Hour, zap.NewNop())
	require.Error(t, svc.Store("timetable-test.csv", []byte("x")))
}
