package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsport/cmsport/internal/config"
	"github.com/cmsport/cmsport/internal/source"
	"github.com/cmsport/cmsport/internal/target"
)

func TestNewAssetProviderSelection(t *testing.T) {
	local, err := NewAssetProvider(config.TargetConfig{AssetProvider: "local", UploadsDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &localProvider{}, local)

	remote, err := NewAssetProvider(config.TargetConfig{AssetProvider: "remote"}, target.NewClient("http://localhost:1337", "token"))
	require.NoError(t, err)
	assert.IsType(t, &remoteProvider{}, remote)

	_, err = NewAssetProvider(config.TargetConfig{AssetProvider: "ftp"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestLocalProviderCopiesFiles(t *testing.T) {
	srcDir := t.TempDir()
	uploadsDir := filepath.Join(t.TempDir(), "uploads")

	srcPath := filepath.Join(srcDir, "abc-100x50.png")
	require.NoError(t, os.WriteFile(srcPath, []byte("png bytes"), 0644))

	p := &localProvider{uploadsDir: uploadsDir}

	id, err := p.Upload(context.Background(), srcPath, source.AssetEntry{OriginalFilename: "photo.png"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	copied, err := os.ReadFile(filepath.Join(uploadsDir, "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(copied))

	// Without an original filename the source basename is kept, and ids
	// stay sequential.
	id, err = p.Upload(context.Background(), srcPath, source.AssetEntry{})
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	_, err = os.Stat(filepath.Join(uploadsDir, "abc-100x50.png"))
	assert.NoError(t, err)
}

func TestLocalProviderMissingSource(t *testing.T) {
	p := &localProvider{uploadsDir: t.TempDir()}

	_, err := p.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png"), source.AssetEntry{})
	assert.Error(t, err)
}

func TestMigrateAssets(t *testing.T) {
	cfg := testConfig(t, "")

	entry := source.AssetEntry{Sha1Hash: "abc", OriginalFilename: "cover.png"}
	entry.Metadata.Dimensions.Width = 100
	entry.Metadata.Dimensions.Height = 50
	require.NoError(t, os.WriteFile(entry.FilePath(cfg.Source.ImagesDir), []byte("data"), 0644))

	missing := source.AssetEntry{Sha1Hash: "nope", OriginalFilename: "gone.png"}
	missing.Metadata.Dimensions.Width = 10
	missing.Metadata.Dimensions.Height = 10

	provider := &localProvider{uploadsDir: cfg.Target.UploadsDir}
	orch, err := NewOrchestrator(cfg, testCatalog(), newStore(), provider, nil)
	require.NoError(t, err)

	orch.MigrateAssets(context.Background(), map[string]source.AssetEntry{
		"image-abc":  entry,
		"image-nope": missing,
	})

	assets, _, _ := orch.State().Snapshot()
	assert.Equal(t, 2, assets.Total)
	assert.Equal(t, 1, assets.Completed)
	assert.Equal(t, 1, assets.Failed)

	assert.Equal(t, map[string]int{"image-abc": 1}, orch.State().AssetMap())

	errs := orch.State().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "assets", errs[0].Phase)
	assert.Equal(t, "image-nope", errs[0].ID)
}
