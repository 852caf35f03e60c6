package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AssetEntry is one entry of the assets index.
type AssetEntry struct {
	Sha1Hash         string        `json:"sha1hash"`
	OriginalFilename string        `json:"originalFilename"`
	Metadata         AssetMetadata `json:"metadata"`
}

// AssetMetadata carries the dimensions used for on-disk path derivation.
type AssetMetadata struct {
	Dimensions AssetDimensions `json:"dimensions"`
}

// AssetDimensions is the pixel size of an exported asset.
type AssetDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FilePath derives the deterministic on-disk location of the asset file
// under the conventional images directory.
func (a *AssetEntry) FilePath(imagesDir string) string {
	return filepath.Join(imagesDir, fmt.Sprintf("%s-%dx%d.png", a.Sha1Hash, a.Metadata.Dimensions.Width, a.Metadata.Dimensions.Height))
}

// LoadAssetIndex reads the JSON assets index keyed by asset reference.
func LoadAssetIndex(path string) (map[string]AssetEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets index: %w", err)
	}

	index := make(map[string]AssetEntry)
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse assets index: %w", err)
	}

	return index, nil
}
