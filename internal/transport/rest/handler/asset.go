package handler

import (
	"io"
	"net/http"
	"strconv"
	"surveyforge/internal/apperror"
	"surveyforge/internal/logger"
	"surveyforge/internal/service"

	"github.com/gorilla/mux"
)

// multipart overhead allowed on top of the file itself
const uploadSlack = 64 << 10

// AssetHandler handles image uploads and serves stored assets
type AssetHandler struct {
	assetSvc *service.AssetService
	maxBytes int64
	log      *logger.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetSvc *service.AssetService, maxBytes int64, log *logger.Logger) *AssetHandler {
	return &AssetHandler{assetSvc: assetSvc, maxBytes: maxBytes, log: log}
}

// Upload handles POST /v1/assets (multipart field "file")
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+uploadSlack)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeInvalidInput, "missing file")
		return
	}
	defer file.Close()

	asset, err := h.assetSvc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// Serve handles GET /v1/assets/{assetId}
func (h *AssetHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rc, asset, err := h.assetSvc.Open(r.Context(), mux.Vars(r)["assetId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	defer rc.Close()

	if asset.ContentType != "" {
		w.Header().Set("Content-Type", asset.ContentType)
	}
	if asset.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn(r.Context(), "asset stream interrupted", map[string]interface{}{"asset_id": asset.ID, "error": err.Error()})
	}
}
