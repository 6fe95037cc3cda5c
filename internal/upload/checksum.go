package upload

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read size used when digesting files.
const ChunkSize = 64 * 1024

// Checksum returns the lower-case hex MD5 of the file at path, reading it
// in ChunkSize pieces.
func Checksum(ctx context.Context, path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ChecksumReader(ctx, f)
}

// ChecksumReader digests r until EOF.
func ChecksumReader(ctx context.Context, r io.Reader) (string, int64, error) {
	h := md5.New()
	buf := make([]byte, ChunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return "", total, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", total, fmt.Errorf("read: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), total, nil
}
