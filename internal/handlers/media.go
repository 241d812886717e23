// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"creatorsite/internal/content"
	"creatorsite/internal/editor"
	"creatorsite/internal/imaging"
	"creatorsite/internal/middleware"
	"creatorsite/internal/models"
	"creatorsite/internal/storage"
	"creatorsite/internal/store"
)

const (
	// maxImageUpload caps image uploads before resizing (5 MB).
	maxImageUpload = 5 << 20

	// maxVideoUpload caps video uploads, stored as-is (20 MB).
	maxVideoUpload = 20 << 20
)

// allowedImageTypes are image MIME types accepted for upload and resizing.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// allowedVideoTypes are video MIME types stored without processing.
var allowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// Media groups the media endpoints: upload, serve, delete, and the guarded
// list-item removal that keeps the document and object storage consistent.
type Media struct {
	storage    *storage.Client
	mediaStore *store.MediaStore
	manager    *editor.Manager
}

// NewMedia creates the media handler group. storageClient may be nil when
// object storage is not configured; upload and delete then report 503.
func NewMedia(storageClient *storage.Client, mediaStore *store.MediaStore, manager *editor.Manager) *Media {
	return &Media{storage: storageClient, mediaStore: mediaStore, manager: manager}
}

// Upload accepts a multipart file, bounds and re-encodes images, stores the
// object under a fresh opaque key, records metadata, and returns the key.
func (m *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if m.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxVideoUpload+1024)
	if err := r.ParseMultipartForm(maxVideoUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	// Strip parameters like "; charset=...".
	if idx := strings.IndexByte(contentType, ';'); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process file.")
		return
	}

	var data []byte
	switch {
	case allowedImageTypes[contentType]:
		if header.Size > maxImageUpload {
			writeError(w, http.StatusRequestEntityTooLarge, "Image too large. Maximum size is 5 MB.")
			return
		}
		result, err := imaging.Resize(file)
		if err != nil {
			slog.Warn("image resize failed", "error", err, "filename", header.Filename)
			writeError(w, http.StatusBadRequest, "Image could not be processed.")
			return
		}
		data = result.Data
		contentType = result.ContentType
	case allowedVideoTypes[contentType]:
		if header.Size > maxVideoUpload {
			writeError(w, http.StatusRequestEntityTooLarge, "Video too large. Maximum size is 20 MB.")
			return
		}
		data, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read file.")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	key := storage.NewKey()
	if err := m.storage.Put(r.Context(), key, contentType, data); err != nil {
		slog.Error("media upload failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "Upload failed.")
		return
	}

	if _, err := m.mediaStore.Create(&models.Media{
		S3Key:        key,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Uploader:     ident.Email,
	}); err != nil {
		// The object is stored and servable; the missing index row only
		// affects listings.
		slog.Warn("media metadata insert failed", "error", err, "key", key)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"key": key,
		"url": m.storage.FileURL(key),
	})
}

// Serve streams a stored object. Objects are immutable, so responses carry
// a long-lived immutable cache header.
func (m *Media) Serve(w http.ResponseWriter, r *http.Request) {
	if m.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}
	key := chi.URLParam(r, "*")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	data, contentType, err := m.storage.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("media fetch failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "Media unavailable.")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

// Delete removes a stored object and its metadata row.
func (m *Media) Delete(w http.ResponseWriter, r *http.Request) {
	if m.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}
	key := chi.URLParam(r, "*")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	if err := m.storage.Delete(r.Context(), key); err != nil {
		slog.Error("media delete failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "Delete failed.")
		return
	}
	if _, err := m.mediaStore.DeleteByKey(key); err != nil {
		slog.Warn("media metadata delete failed", "error", err, "key", key)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// removeItemRequest addresses the list item (or singleton entry) to remove.
type removeItemRequest struct {
	Path content.Path `json:"path"`
}

// RemoveItem removes a list item from the working copy. When the item owns
// a storage-key media reference the stored object is deleted FIRST; if that
// deletion fails the removal is aborted and the document is unchanged.
// Inline and static references never touch storage.
func (m *Media) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}
	sess := m.manager.Get(ident.Email)
	if sess == nil {
		writeError(w, http.StatusNotFound, "No open editing session.")
		return
	}

	var req removeItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	doc := sess.Editable()
	if doc == nil {
		writeError(w, http.StatusConflict, "Content is still loading.")
		return
	}

	refs, err := content.MediaRefs(doc, req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, ref := range refs {
		if !content.IsStored(ref) {
			continue
		}
		if m.storage == nil {
			writeError(w, http.StatusServiceUnavailable, "Object storage is not configured; item not removed.")
			return
		}
		if err := m.storage.Delete(r.Context(), ref); err != nil {
			// Orphaned objects are worse than a visible item; keep the item.
			slog.Error("stored media delete failed, item removal aborted",
				"error", err, "key", ref, "path", req.Path.String())
			writeError(w, http.StatusBadGateway, "Stored media could not be deleted; item not removed.")
			return
		}
		if _, err := m.mediaStore.DeleteByKey(ref); err != nil {
			slog.Warn("media metadata delete failed", "error", err, "key", ref)
		}
	}

	next, err := content.Remove(doc, req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Replace(next); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
