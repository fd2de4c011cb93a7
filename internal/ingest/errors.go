// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ingest

import (
	"errors"
	"fmt"
	"net/http"

	"folio/internal/archive"
	"folio/internal/storage"
)

// Failure classes of an upload. Anything not matching one of these is
// unexpected and reported as an internal error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateSlug      = errors.New("duplicate slug")
	ErrNotFoundForEdit    = errors.New("post not found for editing")
	ErrMalformedArchive   = archive.ErrMalformedArchive
	ErrMissingContent     = archive.ErrMissingContent
	ErrAssetPublishFailed = storage.ErrAssetPublishFailed
)

// Messages returned to the admin client.
const (
	msgArchiveRequired = "Zip file and blog data are required"
	msgEditIDRequired  = "Blog id is required for editing"
	msgFieldsRequired  = "Title, slug, and excerpt are required"
	msgInvalidSlug     = "Slug may only contain lowercase letters, numbers and hyphens"
	msgDuplicateSlug   = "A blog with this slug already exists"
	msgNotFoundForEdit = "Blog not found for editing"
	msgMalformed       = "Uploaded file is not a valid zip archive"
	msgMissingContent  = "No markdown file found in zip"
	msgUnexpected      = "Failed to process blog upload"
)

// ValidationError is a rejected request the caller must fix and resubmit.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// StatusFor maps an upload error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateSlug),
		errors.Is(err, ErrMalformedArchive),
		errors.Is(err, ErrMissingContent):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFoundForEdit):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to the admin for err. Unexpected errors
// get a generic message; their detail belongs in the logs.
func Message(err error) string {
	var ve *ValidationError
	var pe *storage.PublishError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrDuplicateSlug):
		return msgDuplicateSlug
	case errors.Is(err, ErrNotFoundForEdit):
		return msgNotFoundForEdit
	case errors.Is(err, ErrMalformedArchive):
		return msgMalformed
	case errors.Is(err, ErrMissingContent):
		return msgMissingContent
	case errors.As(err, &pe):
		return fmt.Sprintf("Failed to upload image %s", pe.File)
	default:
		return msgUnexpected
	}
}

// IsUnexpected reports whether err falls outside the known failure classes.
func IsUnexpected(err error) bool {
	return err != nil &&
		StatusFor(err) == http.StatusInternalServerError &&
		!errors.Is(err, ErrAssetPublishFailed)
}
