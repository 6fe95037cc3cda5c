package testsupport

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with size bytes of a repeating 0..250 byte pattern,
// so chunk boundaries produce distinct digests. A size <= 0 writes an empty
// file, matching the empty-file MD5 d41d8cd98f00b204e9800998ecf8427e.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	w := bufio.NewWriter(f)
	for i := int64(0); i < size; i++ {
		if err := w.WriteByte(byte(i % 251)); err != nil {
			_ = f.Close()
			t.Fatalf("write %s: %v", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		t.Fatalf("flush %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}
