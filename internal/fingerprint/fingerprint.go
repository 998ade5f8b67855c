package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"video-inventory/internal/filesystem"
	"video-inventory/internal/logging"
	"video-inventory/internal/metrics"
)

// DefaultSampleBytes is the size of each sampled region (2 MiB).
const DefaultSampleBytes int64 = 2 * 1024 * 1024

// readChunk bounds each Read so cancellation is noticed between chunks.
const readChunk = 64 * 1024

// ErrIO marks any open, stat, seek or read failure. A failed fingerprint
// never yields a digest.
var ErrIO = errors.New("fingerprint I/O error")

// Plan reports which regions of a file of the given size are hashed:
// the head always, the midpoint only when size > 2*sampleBytes.
func Plan(size, sampleBytes int64) (midOffset int64, sampleMiddle bool) {
	if size > 2*sampleBytes {
		return size / 2, true
	}
	return 0, false
}

// Compute returns the hex SHA-256 of a sample of path's content.
//
// Up to sampleBytes are read from the start of the file. Files larger than
// 2*sampleBytes also contribute up to sampleBytes read from size/2, fed into
// the same digest after the head. This is a change detector, not an integrity
// hash: edits outside the sampled regions go unnoticed.
func Compute(ctx context.Context, path string, sampleBytes int64) (string, error) {
	if sampleBytes <= 0 {
		sampleBytes = DefaultSampleBytes
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("failed to close %s: %v", path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}

	h := sha256.New()

	n, err := copySample(ctx, h, f, sampleBytes)
	if err != nil {
		return "", fmt.Errorf("%w: read head of %s: %w", ErrIO, path, err)
	}
	total := n

	if mid, ok := Plan(info.Size(), sampleBytes); ok {
		if _, err := f.Seek(mid, io.SeekStart); err != nil {
			return "", fmt.Errorf("%w: seek %s: %w", ErrIO, path, err)
		}
		n, err = copySample(ctx, h, f, sampleBytes)
		if err != nil {
			return "", fmt.Errorf("%w: read middle of %s: %w", ErrIO, path, err)
		}
		total += n
	}

	metrics.FingerprintBytesRead.Add(float64(total))

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copySample copies at most limit bytes from r to w in readChunk pieces,
// checking ctx between pieces. A short file is not an error.
func copySample(ctx context.Context, w io.Writer, r io.Reader, limit int64) (int64, error) {
	buf := make([]byte, readChunk)
	var copied int64

	for copied < limit {
		if err := ctx.Err(); err != nil {
			return copied, err
		}

		want := int64(len(buf))
		if rem := limit - copied; rem < want {
			want = rem
		}

		n, err := r.Read(buf[:want])
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return copied, werr
			}
			copied += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return copied, nil
		}
		if err != nil {
			return copied, err
		}
	}

	return copied, nil
}
