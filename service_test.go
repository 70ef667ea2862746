package tm2map

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/tm2map/search"
	"github.com/poiesic/tm2map/server"
	"github.com/poiesic/tm2map/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFiles(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, source.DefaultTermTableFile),
		[]byte("id,term,category,synonyms,icd11_tm2_code\nNAM001,Jwara,Ayurveda,Fever,MG26\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, source.DefaultCuratedIndexFile),
		[]byte(`{"exact":[],"partial":[{"code":"NAM002","label":"Kasa","synonyms":["Cough"],"icd11_tm2_codes":["MD30"]}]}`), 0o644))
}

func TestNewService(t *testing.T) {
	t.Run("in-memory storage with data dir", func(t *testing.T) {
		dataDir := t.TempDir()
		writeDataFiles(t, dataDir)

		svc, err := NewService(context.Background(), WithDataDir(dataDir))
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()

		assert.NotNil(t, svc.Engine())
		assert.NotNil(t, svc.Settings())
		assert.Equal(t, 2, svc.Engine().Stats().TotalMappings)

		result, found := svc.Engine().Translate("NAM002")
		require.True(t, found)
		assert.Equal(t, "MD30", result.TargetCode)
	})

	t.Run("persistent storage records snapshot", func(t *testing.T) {
		dataDir := t.TempDir()
		writeDataFiles(t, dataDir)
		dbPath := filepath.Join(t.TempDir(), "db")

		svc, err := NewService(context.Background(), WithDataDir(dataDir), WithDatabasePath(dbPath))
		require.NoError(t, err)
		defer svc.Close()

		info, err := svc.SnapshotRepository().LoadSnapshotInfo(context.Background())
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, svc.Engine().Snapshot().Fingerprint, info.Fingerprint)
	})

	t.Run("missing data files yield an empty engine", func(t *testing.T) {
		svc, err := NewService(context.Background(), WithDataDir(t.TempDir()))
		require.NoError(t, err)
		defer svc.Close()

		assert.Equal(t, 0, svc.Engine().Stats().TotalMappings)
	})

	t.Run("explicit paths override data dir", func(t *testing.T) {
		dataDir := t.TempDir()
		writeDataFiles(t, dataDir)

		svc, err := NewService(context.Background(),
			WithDataDir(t.TempDir()),
			WithTermTable(filepath.Join(dataDir, source.DefaultTermTableFile)),
		)
		require.NoError(t, err)
		defer svc.Close()

		assert.Equal(t, 1, svc.Engine().Stats().TotalMappings)
	})

	t.Run("malformed data fails", func(t *testing.T) {
		dataDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, source.DefaultCuratedIndexFile), []byte(`[1,2`), 0o644))

		svc, err := NewService(context.Background(), WithDataDir(dataDir))
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("invalid scores fail", func(t *testing.T) {
		svc, err := NewService(context.Background(), WithDataDir(t.TempDir()), WithScores(search.Scores{Table: 2}))
		assert.ErrorIs(t, err, search.ErrInvalidScores)
		assert.Nil(t, svc)
	})

	t.Run("error with invalid database path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		svc, err := NewService(context.Background(), WithDataDir(t.TempDir()), WithDatabasePath(tmpFile))
		assert.Error(t, err)
		assert.Nil(t, svc)
	})
}

func TestService_NewServer(t *testing.T) {
	svc, err := NewService(context.Background(), WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer svc.Close()

	srv, err := svc.NewServer(server.DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, srv.Handler())
}

func TestService_Close(t *testing.T) {
	svc, err := NewService(context.Background(), WithDataDir(t.TempDir()))
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}
