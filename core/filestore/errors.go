package filestore

import "github.com/pkg/errors"

// Error taxonomy of the storage subsystem. The HTTP layer maps each sentinel
// to a status code; none of them leaks internal details to the caller.
var (
	ErrFileRequired        = errors.New("no file provided")
	ErrAssignmentRequired  = errors.New("assignment ID is required")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrUnsupportedType     = errors.New("file type not allowed")
	ErrPayloadTooLarge     = errors.New("file size exceeds the maximum allowed")
	ErrAllocationExhausted = errors.New("unable to generate unique filename")
	ErrUploadFailed        = errors.New("file upload failed")

	ErrInvalidName         = errors.New("invalid filename")
	ErrNotFound            = errors.New("file not found")
	ErrUnassociated        = errors.New("file not associated with any submission")
	ErrForbidden           = errors.New("access denied")
	ErrEmptyFile           = errors.New("file is empty")
	ErrInvalidRangeHeader  = errors.New("invalid range header")
	ErrRangeNotSatisfiable = errors.New("invalid range")

	ErrSubmissionNotFound = errors.New("submission not found")
)
