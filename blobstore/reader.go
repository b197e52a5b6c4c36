package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// DefaultChunkSize is the read size used by Reader.
const DefaultChunkSize = 1 << 20

// Reader adapts a Blob into an io.Reader bound to a context.
type Reader struct {
	ctx     context.Context
	blob    Blob
	limiter IOLimiter
	off     int64
}

// NewReader returns a sequential reader over blob. limiter may be nil.
func NewReader(ctx context.Context, blob Blob, limiter IOLimiter) *Reader {
	return &Reader{ctx: ctx, blob: blob, limiter: limiter}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if remaining := r.blob.Size() - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if len(p) > DefaultChunkSize {
		p = p[:DefaultChunkSize]
	}
	if r.limiter != nil {
		if err := r.limiter.AcquireIO(r.ctx, len(p)); err != nil {
			return 0, err
		}
	}

	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		return n, nil
	}
	return n, err
}

// ReadAll returns the full contents of blob.
func ReadAll(ctx context.Context, blob Blob, limiter IOLimiter) ([]byte, error) {
	if m, ok := blob.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	if f, ok := blob.(Fetcher); ok {
		data, err := f.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if limiter != nil && len(data) > 0 {
			// account for the transfer after the fact
			if err := limiter.AcquireIO(ctx, len(data)); err != nil {
				return nil, err
			}
		}
		return data, nil
	}

	buf := make([]byte, 0, blob.Size())
	r := NewReader(ctx, blob, limiter)
	chunk := make([]byte, DefaultChunkSize)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Stream returns a reader over the full contents of blob. Mapped blobs are
// read in place and must stay open until the reader is drained.
func Stream(ctx context.Context, blob Blob, limiter IOLimiter) (io.Reader, error) {
	if m, ok := blob.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}

	if f, ok := blob.(Fetcher); ok {
		data, err := f.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}

	return NewReader(ctx, blob, limiter), nil
}
