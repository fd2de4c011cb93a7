// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"folio/internal/logger"
)

// ResumeKey is the object key of the current resume on the asset host.
const ResumeKey = "resume.pdf"

// resumeTypes maps accepted resume MIME types to their extensions.
var resumeTypes = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// ResumeStore is the slice of the asset host the resume upload needs.
type ResumeStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Copy(ctx context.Context, srcKey, dstKey string) error
	Upload(ctx context.Context, key, contentType string, data []byte) error
	FileURL(key string) string
}

// Resume handles resume uploads.
type Resume struct {
	objects ResumeStore
	maxSize int64
	now     func() time.Time
}

// NewResume creates the Resume handler. objects may be nil when no asset
// host is configured; uploads then fail with 503.
func NewResume(objects ResumeStore, maxSize int64) *Resume {
	return &Resume{objects: objects, maxSize: maxSize, now: time.Now}
}

type resumeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	URL        string `json:"url"`
	BackupFile string `json:"backupFile,omitempty"`
}

// Upload replaces the current resume with the multipart "resume" file. The
// previous resume is first copied to a timestamped backup.
func (h *Resume) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.WithCtx(ctx)

	if h.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "Asset storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+maxJSONBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if _, big := tooLarge(err); big {
			writeError(w, http.StatusBadRequest, "File too large. Please upload a file smaller than "+humanSize(h.maxSize)+".")
			return
		}
		writeError(w, http.StatusBadRequest, "No resume file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No resume file provided")
		return
	}
	defer file.Close()

	contentType, ext, ok := resumeType(header.Header.Get("Content-Type"), header.Filename)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload a PDF, DOC, or DOCX file.")
		return
	}
	if header.Size > h.maxSize {
		writeError(w, http.StatusBadRequest, "File too large. Please upload a file smaller than "+humanSize(h.maxSize)+".")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read resume file")
		return
	}

	if ext == "pdf" {
		pages, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
		if err != nil {
			log.Warn("rejected resume: unreadable pdf", zap.Error(err))
			writeError(w, http.StatusBadRequest, "The uploaded PDF could not be read", err.Error())
			return
		}
		log.Info("resume pdf validated", zap.Int("pages", pages))
	}

	backup, err := h.backup(ctx, ext)
	if err != nil {
		// A failed backup must not block replacing the resume.
		log.Warn("resume backup failed", zap.Error(err))
	}

	if err := h.objects.Upload(ctx, ResumeKey, contentType, data); err != nil {
		log.Error("resume upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to upload resume", err.Error())
		return
	}

	log.Info("resume uploaded",
		zap.String("filename", header.Filename),
		zap.String("size", humanSize(int64(len(data)))),
		zap.String("backup", backup),
	)
	writeJSON(w, http.StatusOK, resumeResponse{
		Success:    true,
		Message:    "Resume uploaded successfully",
		URL:        h.objects.FileURL(ResumeKey),
		BackupFile: backup,
	})
}

// backup copies the current resume to resume-backup-<timestamp>.<ext>. It
// returns "" when there is no current resume.
func (h *Resume) backup(ctx context.Context, ext string) (string, error) {
	exists, err := h.objects.Exists(ctx, ResumeKey)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}

	name := backupName(h.now(), ext)
	if err := h.objects.Copy(ctx, ResumeKey, name); err != nil {
		return "", err
	}
	return name, nil
}

// backupName returns resume-backup-2006-01-02T15-04-05-000Z.<ext> for t in
// UTC. Milliseconds keep backups made within one second apart.
func backupName(t time.Time, ext string) string {
	stamp := t.UTC().Format("2006-01-02T15-04-05.000Z")
	return "resume-backup-" + strings.Replace(stamp, ".", "-", 1) + "." + ext
}

// resumeType resolves the upload's MIME type from its declared type,
// falling back to the filename extension for generic declarations.
func resumeType(declared, filename string) (contentType, ext string, ok bool) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		if ext, ok := resumeTypes[mt]; ok {
			return mt, ext, true
		}
		if mt != "application/octet-stream" {
			return "", "", false
		}
	}

	fileExt := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for mt, e := range resumeTypes {
		if e == fileExt {
			return mt, e, true
		}
	}
	return "", "", false
}
