package services

import "errors"

// Error kinds surfaced by the upload/attachment core. Handlers map these to
// HTTP statuses; everything else bubbles up as an internal error.
var (
	ErrMissingFilename = errors.New("no filename provided")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrForbidden       = errors.New("not enough permissions")
)
