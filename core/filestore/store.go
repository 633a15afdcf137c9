package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tetrixuno/skillup/core"
)

// maxAllocAttempts bounds the unique-name retry loop.
const maxAllocAttempts = 10

// Store owns a single flat directory of stored files. It keeps no in-memory
// state between calls; the filesystem is the system of record.
type Store struct {
	root   string
	logger core.Logger
}

func NewStore(conf *core.Config, logger core.Logger) (*Store, error) {
	if err := os.MkdirAll(conf.Upload.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", conf.Upload.Dir)
	}
	return &Store{root: conf.Upload.Dir, logger: logger}, nil
}

func (st *Store) Root() string { return st.root }

// Path joins a stored name onto the root. Callers must have validated the
// name against traversal first.
func (st *Store) Path(name string) string { return filepath.Join(st.root, name) }

func (st *Store) Stat(name string) (os.FileInfo, error) {
	return os.Stat(st.Path(name))
}

func (st *Store) Exists(name string) bool {
	_, err := st.Stat(name)
	return err == nil
}

func (st *Store) Open(name string) (*os.File, error) {
	return os.Open(st.Path(name))
}

func (st *Store) Remove(name string) error {
	return os.Remove(st.Path(name))
}

// Create allocates a unique stored name and opens it for writing. O_EXCL
// makes allocation an at-most-one-winner operation even for concurrent
// uploads that draw the same name; the retry draws a fresh random component
// (and, past a second boundary, a fresh timestamp) each time.
func (st *Store) Create(originalName string, assignmentID, studentID int) (string, *os.File, error) {
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		name := UniqueName(originalName, assignmentID, studentID)
		f, err := os.OpenFile(st.Path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return name, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, errors.Wrapf(err, "creating %s", name)
		}
		st.logger.Warn(fmt.Sprintf("stored name collision (attempt %d): %s", attempt, name))
	}
	return "", nil, ErrAllocationExhausted
}

// Save streams r into a freshly allocated file and returns the stored name
// and byte count. On any write error the partial file is removed before the
// error is surfaced.
func (st *Store) Save(originalName string, assignmentID, studentID int, r io.Reader) (string, int64, error) {
	name, f, err := st.Create(originalName, assignmentID, studentID)
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(f, r)
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		if rmErr := st.Remove(name); rmErr != nil && !os.IsNotExist(rmErr) {
			st.logger.Error(fmt.Sprintf("removing partial file %s: %v", name, rmErr))
		}
		return "", 0, errors.Wrapf(err, "writing %s", name)
	}
	return name, n, nil
}

// List returns the names and sizes of all regular files under the root.
func (st *Store) List() (map[string]int64, error) {
	entries, err := os.ReadDir(st.root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading upload dir %s", st.root)
	}
	files := make(map[string]int64, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// raced with a delete mid-scan; skip
			st.logger.Warn(fmt.Sprintf("stat %s: %v", entry.Name(), err))
			continue
		}
		files[entry.Name()] = fi.Size()
	}
	return files, nil
}
