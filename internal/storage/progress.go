package storage

import "io"

// ProgressFunc receives upload progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// ProgressReader wraps an upload body and reports byte-level progress as
// it is consumed. The final 100 is emitted when the reader hits EOF, so
// callers see completion even when the total is not known exactly.
type ProgressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	onChange ProgressFunc
}

// NewProgressReader wraps r, reporting progress against total bytes.
// A nil onChange or non-positive total disables reporting.
func NewProgressReader(r io.Reader, total int64, onChange ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, last: -1, onChange: onChange}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if p.onChange != nil && p.total > 0 {
		percent := int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if err == io.EOF {
			percent = 100
		}
		if percent != p.last {
			p.last = percent
			p.onChange(percent)
		}
	}

	return n, err
}
