package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/starford/lngkit/internal/langs"
)

// ServeRaw handles GET /api/languages/{code}/raw and returns the file as
// plain text. Conditional requests are answered by http.ServeContent
// against the checksum ETag.
func (h *Handler) ServeRaw(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	d, err := h.svc.Language(r.Context(), code)
	if err != nil {
		writeServiceError(w, "serve raw", err, slog.String("code", code))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.File+`"`)
	http.ServeContent(w, r, d.File, d.UpdatedAt, strings.NewReader(d.Content))
}

// Upload handles POST /api/languages/upload (multipart/form-data, field
// "file"). The language code is taken from the file name.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContentBytes)

	if err := r.ParseMultipartForm(maxContentBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name := filepath.Base(filepath.Clean(header.Filename))
	code, ok := langs.FileCode(name, h.svc.Ext())
	if !ok || name != header.Filename {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid filename: "+header.Filename))
		return
	}

	var buf bytes.Buffer
	written, err := io.Copy(&buf, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read file"))
		return
	}

	d, created, err := h.svc.PutLanguage(r.Context(), code, buf.Bytes(), r.FormValue("if_match"))
	if err != nil {
		writeServiceError(w, "upload language", err, slog.String("file", name))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, UploadResponse{
		Code:     d.Code,
		File:     d.File,
		Size:     written,
		Created:  created,
		Checksum: d.Checksum,
	})
}
