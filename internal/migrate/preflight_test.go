package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsport/cmsport/internal/config"
)

func migrateConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	exportPath := filepath.Join(dir, "export.ndjson")
	assetsIndex := filepath.Join(dir, "assets.json")
	imagesDir := filepath.Join(dir, "images")
	schemaDir := filepath.Join(dir, "schemas")

	require.NoError(t, os.WriteFile(exportPath, []byte("{}\n"), 0644))
	require.NoError(t, os.WriteFile(assetsIndex, []byte("{}"), 0644))
	require.NoError(t, os.MkdirAll(imagesDir, 0755))
	require.NoError(t, os.MkdirAll(schemaDir, 0755))

	cfg := config.DefaultConfig()
	cfg.Source.ExportPath = exportPath
	cfg.Source.AssetsIndex = assetsIndex
	cfg.Source.ImagesDir = imagesDir
	cfg.Source.SchemaDir = schemaDir
	cfg.Target.Token = "secret"
	cfg.Target.UploadsDir = filepath.Join(dir, "uploads")
	return cfg
}

func TestCheckConvertPasses(t *testing.T) {
	checker := NewPreflightChecker(migrateConfig(t), nil)
	assert.NoError(t, checker.CheckConvert())
}

func TestCheckConvertMissingSchemaDir(t *testing.T) {
	cfg := migrateConfig(t)
	cfg.Source.SchemaDir = filepath.Join(t.TempDir(), "nope")

	err := NewPreflightChecker(cfg, nil).CheckConvert()
	require.Error(t, err)

	pf, ok := err.(*PreflightError)
	require.True(t, ok, "expected *PreflightError, got %T", err)
	assert.Equal(t, "PATH_CHECK", pf.Check)
}

func TestCheckConvertInvalidConfig(t *testing.T) {
	cfg := migrateConfig(t)
	cfg.Target.URL = ""

	err := NewPreflightChecker(cfg, nil).CheckConvert()
	require.Error(t, err)

	pf, ok := err.(*PreflightError)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_CHECK", pf.Check)
}

func TestCheckMigratePasses(t *testing.T) {
	checker := NewPreflightChecker(migrateConfig(t), nil)
	assert.NoError(t, checker.CheckMigrate())
}

func TestCheckMigrateMissingExport(t *testing.T) {
	cfg := migrateConfig(t)
	cfg.Source.ExportPath = filepath.Join(t.TempDir(), "missing.ndjson")

	err := NewPreflightChecker(cfg, nil).CheckMigrate()
	require.Error(t, err)

	pf, ok := err.(*PreflightError)
	require.True(t, ok)
	assert.Equal(t, "PATH_CHECK", pf.Check)
}

func TestCheckMigrateRequiresToken(t *testing.T) {
	cfg := migrateConfig(t)
	cfg.Target.Token = ""

	err := NewPreflightChecker(cfg, nil).CheckMigrate()
	require.Error(t, err)

	pf, ok := err.(*PreflightError)
	require.True(t, ok)
	assert.Equal(t, "CREDENTIAL_CHECK", pf.Check)
}

func TestCheckMigrateUnknownAssetProvider(t *testing.T) {
	cfg := migrateConfig(t)
	cfg.Target.AssetProvider = "carrier-pigeon"

	err := NewPreflightChecker(cfg, nil).CheckMigrate()
	require.Error(t, err)

	// Config validation catches the bad provider before the dedicated check.
	pf, ok := err.(*PreflightError)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_CHECK", pf.Check)
}

func TestPreflightErrorMessage(t *testing.T) {
	err := &PreflightError{Check: "PATH_CHECK", Message: "gone"}
	assert.Equal(t, "PATH_CHECK: gone", err.Error())
}
