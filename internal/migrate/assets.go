package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cmsport/cmsport/internal/config"
	"github.com/cmsport/cmsport/internal/source"
	"github.com/cmsport/cmsport/internal/target"
)

// AssetProvider uploads one asset file and returns its target media id.
type AssetProvider interface {
	Upload(ctx context.Context, filePath string, entry source.AssetEntry) (int, error)
}

// NewAssetProvider selects the provider from configuration. An unknown
// selector is a pre-flight failure, not a runtime one.
func NewAssetProvider(cfg config.TargetConfig, uploader target.Uploader) (AssetProvider, error) {
	switch cfg.AssetProvider {
	case "local":
		return &localProvider{uploadsDir: cfg.UploadsDir}, nil
	case "remote":
		return &remoteProvider{uploader: uploader}, nil
	default:
		return nil, fmt.Errorf("unknown asset provider %q", cfg.AssetProvider)
	}
}

// localProvider copies asset files into the target's uploads directory and
// hands out sequential media ids. The target imports the files separately.
type localProvider struct {
	uploadsDir string
	nextID     int
}

func (p *localProvider) Upload(_ context.Context, filePath string, entry source.AssetEntry) (int, error) {
	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return 0, err
	}

	name := entry.OriginalFilename
	if name == "" {
		name = filepath.Base(filePath)
	}

	src, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(p.uploadsDir, name))
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return 0, err
	}

	p.nextID++
	return p.nextID, nil
}

// remoteProvider posts asset files to the target's upload endpoint.
type remoteProvider struct {
	uploader target.Uploader
}

func (p *remoteProvider) Upload(ctx context.Context, filePath string, _ source.AssetEntry) (int, error) {
	return p.uploader.Upload(ctx, filePath)
}

// MigrateAssets resolves and uploads every entry of the assets index,
// populating the asset identity map. A missing file is skipped with a
// warning; an upload failure is recorded. Neither aborts the run.
func (o *Orchestrator) MigrateAssets(ctx context.Context, index map[string]source.AssetEntry) {
	refs := make([]string, 0, len(index))
	for ref := range index {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	o.state.AddAssetTotal(len(refs))
	o.logger.Infow("Migrating assets", "count", len(refs))

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return
		}

		entry := index[ref]
		path := entry.FilePath(o.cfg.Source.ImagesDir)

		if _, err := os.Stat(path); err != nil {
			o.state.AssetFailed()
			o.state.RecordError("assets", ref, fmt.Sprintf("asset file missing: %s", path))
			o.logger.Warnw("Asset file missing, skipping", "asset", ref, "path", path)
			continue
		}

		id, err := o.assets.Upload(ctx, path, entry)
		if err != nil {
			o.state.AssetFailed()
			o.state.RecordError("assets", ref, err.Error())
			o.logger.Warnw("Asset upload failed", "asset", ref, "error", err)
			continue
		}

		o.state.MapAsset(ref, id)
		o.state.AssetCompleted()
	}

	assets, _, _ := o.state.Snapshot()
	o.logger.Infow("Asset migration complete",
		"completed", assets.Completed,
		"failed", assets.Failed,
	)
}
