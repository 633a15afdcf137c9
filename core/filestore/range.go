package filestore

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteRange is a validated byte-range request against a file of Total bytes.
type ByteRange struct {
	Start int64
	End   int64
	Total int64
}

func (r ByteRange) Length() int64 { return r.End - r.Start + 1 }

// ContentRange renders the Content-Range header value for this range.
func (r ByteRange) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Total)
}

// ParseRange parses a "bytes=start-end" header against a file of size bytes.
// Either bound may be omitted: start defaults to 0 and end to size-1.
// A malformed header yields ErrInvalidRangeHeader; bounds outside the file
// (start >= size, end >= size or start > end) yield ErrRangeNotSatisfiable.
// Validation happens before any file read.
func ParseRange(header string, size int64) (ByteRange, error) {
	spec := strings.TrimPrefix(header, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return ByteRange{}, ErrInvalidRangeHeader
	}

	var start, end int64 = 0, size - 1
	var err error
	if parts[0] != "" {
		if start, err = strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64); err != nil {
			return ByteRange{}, ErrInvalidRangeHeader
		}
	}
	if parts[1] != "" {
		if end, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64); err != nil {
			return ByteRange{}, ErrInvalidRangeHeader
		}
	}

	if start < 0 || start >= size || end >= size || start > end {
		return ByteRange{}, ErrRangeNotSatisfiable
	}
	return ByteRange{Start: start, End: end, Total: size}, nil
}
