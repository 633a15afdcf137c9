package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/tetrixuno/skillup/core"
)

type (
	// UploadRequest is the transient view of one incoming upload.
	UploadRequest struct {
		AssignmentID int
		FileName     string
		Size         int64
		File         io.Reader
	}

	UploadResult struct {
		FilePath     string `json:"file_path"`
		FileName     string `json:"file_name"`
		AssignmentID int    `json:"assignment_id"`
		FileSize     int64  `json:"file_size"`
	}

	// Download locates an authorized artifact for streaming.
	Download struct {
		Path string // absolute path under the storage root
		Name string // human-facing attachment name
		Size int64
	}

	SubmissionFile struct {
		FilePath    string `json:"file_path"`
		FileName    string `json:"file_name"`
		DownloadURL string `json:"download_url"`
		FileExists  bool   `json:"file_exists"`
		FileSize    int64  `json:"file_size"`
	}

	Service struct {
		store    *Store
		registry Registry
		conf     *core.Config
		logger   core.Logger
	}
)

func NewService(store *Store, registry Registry, conf *core.Config, logger core.Logger) *Service {
	return &Service{store: store, registry: registry, conf: conf, logger: logger}
}

func (svc *Service) Store() *Store { return svc.store }

func (svc *Service) extensionAllowed(name string) bool {
	_, ext := SplitExt(name)
	if ext == "" {
		return false
	}
	for _, allowed := range svc.conf.Upload.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Upload validates and persists one uploaded file, returning the stored
// name. It does not touch the registry: creating the submission reference is
// the caller's half of the logical transaction.
//
// Validation is ordered and fails fast with no side effects: payload
// present, assignment exists, extension allowed, size within the ceiling.
// Only then are bytes written.
func (svc *Service) Upload(ctx context.Context, p Principal, req UploadRequest) (UploadResult, error) {
	if req.File == nil || req.FileName == "" {
		return UploadResult{}, ErrFileRequired
	}
	if req.AssignmentID <= 0 {
		return UploadResult{}, ErrAssignmentRequired
	}
	ok, err := svc.registry.AssignmentExists(ctx, req.AssignmentID)
	if err != nil {
		return UploadResult{}, errors.Wrap(err, "looking up assignment")
	}
	if !ok {
		return UploadResult{}, ErrAssignmentNotFound
	}
	if !svc.extensionAllowed(req.FileName) {
		return UploadResult{}, ErrUnsupportedType
	}
	if req.Size > svc.conf.Upload.MaxSize {
		return UploadResult{}, ErrPayloadTooLarge
	}

	original := SanitizeName(req.FileName)
	name, written, err := svc.store.Save(original, req.AssignmentID, p.ID, req.File)
	if err != nil {
		if errors.Cause(err) == ErrAllocationExhausted {
			return UploadResult{}, err
		}
		svc.logger.Error(fmt.Sprintf("saving upload for student %d: %v", p.ID, err), err)
		return UploadResult{}, ErrUploadFailed
	}

	// Re-stat after write; a size mismatch can be a legitimate
	// streaming-write artifact, so it is logged rather than surfaced.
	if fi, sErr := svc.store.Stat(name); sErr != nil {
		svc.logger.Error(fmt.Sprintf("file not found after save: %s", name))
		return UploadResult{}, ErrUploadFailed
	} else if req.Size > 0 && fi.Size() != req.Size {
		svc.logger.Warn(fmt.Sprintf("size mismatch for %s: measured %d, saved %d", name, req.Size, fi.Size()))
	}

	svc.logger.Info(fmt.Sprintf("stored %s (%d bytes) for student %d", name, written, p.ID))
	return UploadResult{
		FilePath:     name,
		FileName:     original,
		AssignmentID: req.AssignmentID,
		FileSize:     req.Size,
	}, nil
}

// Download resolves a stored name to an authorized, non-empty artifact.
// The checks are ordered: name hygiene, existence, registry association,
// access control, then the zero-byte rejection.
func (svc *Service) Download(ctx context.Context, p Principal, storedName string) (Download, error) {
	// the name is joined onto the storage root later; reject traversal
	// regardless of filesystem behavior
	if strings.Contains(storedName, "..") ||
		strings.HasPrefix(storedName, "/") ||
		strings.Contains(storedName, `\`) {
		return Download{}, ErrInvalidName
	}

	fi, err := svc.store.Stat(storedName)
	if err != nil {
		if os.IsNotExist(err) {
			return Download{}, ErrNotFound
		}
		return Download{}, errors.Wrapf(err, "stat %s", storedName)
	}
	if !fi.Mode().IsRegular() {
		return Download{}, ErrNotFound
	}

	ref, err := svc.registry.FindByFilePath(ctx, storedName)
	if err != nil {
		return Download{}, errors.Wrap(err, "resolving file reference")
	}
	if ref == nil {
		return Download{}, ErrUnassociated
	}

	if !canAccess(p, *ref) {
		svc.logger.Warn(fmt.Sprintf("access denied for user %d to file %s", p.ID, storedName))
		return Download{}, ErrForbidden
	}

	if fi.Size() == 0 {
		return Download{}, ErrEmptyFile
	}

	name := ref.FileName
	if name == "" {
		name = storedName
	}
	return Download{Path: svc.store.Path(storedName), Name: name, Size: fi.Size()}, nil
}

// ReadRange reads the requested byte window of an already authorized
// download, proving the window is servable before the HTTP layer answers the
// range request.
func (svc *Service) ReadRange(dl Download, br ByteRange) ([]byte, error) {
	f, err := os.Open(dl.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", dl.Path)
	}
	defer f.Close()

	if _, err = f.Seek(br.Start, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking %s", dl.Path)
	}
	buf := make([]byte, br.Length())
	if _, err = io.ReadFull(f, buf); err != nil {
		return nil, errors.Wrapf(err, "reading %s", dl.Path)
	}
	return buf, nil
}

// ListSubmissionFiles reports the files attached to a submission along with
// existence flags and absolute download links.
func (svc *Service) ListSubmissionFiles(ctx context.Context, p Principal, submissionID int) ([]SubmissionFile, error) {
	ref, err := svc.registry.FindBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, errors.Wrap(err, "finding submission")
	}
	if ref == nil {
		return nil, ErrSubmissionNotFound
	}
	if !canAccess(p, *ref) {
		return nil, ErrForbidden
	}

	files := make([]SubmissionFile, 0, 1)
	if ref.FilePath != "" {
		var size int64
		var exists bool
		if fi, sErr := svc.store.Stat(ref.FilePath); sErr == nil && fi.Mode().IsRegular() {
			exists = true
			size = fi.Size()
		}
		name := ref.FileName
		if name == "" {
			name = ref.FilePath
		}
		files = append(files, SubmissionFile{
			FilePath:    ref.FilePath,
			FileName:    name,
			DownloadURL: svc.conf.BackendBaseURL + "/v1/files/download/" + ref.FilePath,
			FileExists:  exists,
			FileSize:    size,
		})
	}
	return files, nil
}
