package filestore

import (
	"fmt"
	"os"
)

// VerifyResult reports a stored file's integrity in human-readable form.
type VerifyResult struct {
	Filename string `json:"filename"`
	IsValid  bool   `json:"is_valid"`
	Message  string `json:"message"`
	Size     int64  `json:"size"`
}

// Verify checks existence, regular-file type and non-zero size, in that
// order. It is read-only and safe to call concurrently and repeatedly.
func (st *Store) Verify(name string) VerifyResult {
	fi, err := os.Stat(st.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return VerifyResult{Filename: name, Message: "File does not exist"}
		}
		return VerifyResult{Filename: name, Message: fmt.Sprintf("Error: %v", err)}
	}
	if !fi.Mode().IsRegular() {
		return VerifyResult{Filename: name, Message: "Path is not a file"}
	}
	if fi.Size() == 0 {
		return VerifyResult{Filename: name, Message: "File is empty"}
	}
	return VerifyResult{
		Filename: name,
		IsValid:  true,
		Message:  fmt.Sprintf("File OK (%d bytes)", fi.Size()),
		Size:     fi.Size(),
	}
}
