package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"surveyforge/internal/apperror"
	"surveyforge/internal/logger"
	"surveyforge/internal/repository"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// AssetURLPrefix is where uploaded assets are served from
const AssetURLPrefix = "/v1/assets/"

// UploadedAsset is returned after a successful upload
type UploadedAsset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// AssetService stores banner and logo images
type AssetService struct {
	store    repository.AssetStore
	maxBytes int64
	log      *logger.Logger
	now      func() time.Time
}

// NewAssetService creates a new asset service
func NewAssetService(store repository.AssetStore, maxBytes int64, log *logger.Logger) *AssetService {
	return &AssetService{store: store, maxBytes: maxBytes, log: log, now: time.Now}
}

// Upload sniffs the content type, accepts raster images only and stores the file
// under banners/{unix millis}_{name}.
func (s *AssetService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadedAsset, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apperror.InvalidInput("el archivo está vacío")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperror.InvalidInput(fmt.Sprintf("el archivo supera el máximo de %d bytes", s.maxBytes))
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, apperror.InvalidInput("solo se admiten imágenes")
	}
	// SVG can carry script and is served from the API origin
	if mtype.Is("image/svg+xml") {
		return nil, apperror.InvalidInput("las imágenes SVG no están permitidas")
	}

	name := fmt.Sprintf("banners/%d_%s", s.now().UnixMilli(), cleanFilename(filename, mtype.Extension()))
	id, err := s.store.Upload(ctx, name, mtype.String(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}

	s.log.Info(ctx, "asset uploaded", map[string]interface{}{"asset_id": id, "name": name, "size": len(data)})
	return &UploadedAsset{
		ID:          id,
		URL:         AssetURLPrefix + id,
		Name:        name,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
	}, nil
}

// Open streams a stored asset. The caller closes the reader.
func (s *AssetService) Open(ctx context.Context, id string) (io.ReadCloser, *repository.Asset, error) {
	rc, asset, err := s.store.Open(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open asset: %w", err)
	}
	if rc == nil {
		return nil, nil, apperror.New(apperror.CodeNotFound, "El archivo no existe.")
	}
	return rc, asset, nil
}

func cleanFilename(filename, ext string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." || base == "_" {
		base = "upload" + ext
	}
	return base
}
