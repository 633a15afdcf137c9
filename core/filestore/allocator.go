package filestore

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName strips any path components from name and replaces runs of
// unsafe characters with a single underscore. Sanitizing an already-sanitized
// name yields the same name. The result may be empty; callers substitute a
// placeholder base name in that case.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._-")
}

// SplitExt splits a filename into base and lower-cased extension on the last
// dot. A name without a dot has an empty extension.
func SplitExt(name string) (base, ext string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], strings.ToLower(name[i+1:])
	}
	return name, ""
}

// UniqueName derives a collision-resistant on-disk name from the original
// filename plus assignment/student/time context:
//
//	assignment_{aid}_student_{sid}_{unixSeconds}_{8hexRandom}_{base}[.{ext}]
//
// The embedded metadata exists purely for human debuggability; nothing parses
// it back out. Collision resistance comes from the random component; the
// caller's exclusive-create retry loop is only a backstop.
func UniqueName(originalName string, assignmentID, studentID int) string {
	safe := SanitizeName(originalName)
	if safe == "" {
		safe = "file"
	}
	base, ext := SplitExt(safe)
	if base == "" {
		base = "file"
	}

	name := fmt.Sprintf(
		"assignment_%d_student_%d_%d_%s_%s",
		assignmentID, studentID, time.Now().Unix(), uuid.New().String()[:8], base,
	)
	if ext != "" {
		name += "." + ext
	}
	return name
}
