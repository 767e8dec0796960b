// Package httprange parses single byte-range request headers for the
// streaming endpoint. Only the "bytes=start-end" form is supported;
// anything else is treated as "no usable range" so the caller can fall
// back to a full 200 response.
package httprange

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteRange is an inclusive byte window within an asset of known size.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range header value for a 206 response.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// Header formats the upstream Range request header for this window.
func (r ByteRange) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Parse interprets a Range request header against an asset of the given
// size. Start is required; a missing end defaults to size-1. It returns
// ok=false for an absent, malformed, or unsatisfiable range (start >= size,
// end >= size, or start > end), in which case the caller serves the full
// body with a 200.
func Parse(header string, size int64) (ByteRange, bool) {
	if header == "" || size <= 0 {
		return ByteRange{}, false
	}

	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, false
	}

	spec := strings.TrimPrefix(header, prefix)
	// Multi-range requests are not supported; serve the full body instead.
	if strings.Contains(spec, ",") {
		return ByteRange{}, false
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 || parts[0] == "" {
		return ByteRange{}, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, false
	}

	end := size - 1
	if strings.TrimSpace(parts[1]) != "" {
		end, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return ByteRange{}, false
		}
	}

	if start >= size || end >= size || start > end {
		return ByteRange{}, false
	}

	return ByteRange{Start: start, End: end}, true
}
