package cas

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestSumB3(t *testing.T) {
	data := []byte("hello world")
	if SumB3(data) != SumB3(data) {
		t.Error("Same data should produce same hash")
	}
	if SumB3(data) == SumB3([]byte("hello world!")) {
		t.Error("Different data should produce different hashes")
	}
}

func TestParseHash(t *testing.T) {
	h := SumB3([]byte("parse me"))
	parsed, err := ParseHash(h.String())
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if parsed != h {
		t.Errorf("ParseHash(%s) = %s", h, parsed)
	}

	for _, bad := range []string{"", "abc", strings.Repeat("zz", 32)} {
		if _, err := ParseHash(bad); err == nil {
			t.Errorf("ParseHash(%q) should fail", bad)
		}
	}
}

func TestMemoryCAS(t *testing.T) {
	store := NewMemoryCAS()
	data := []byte("test data")
	hash := SumB3(data)

	has, err := store.Has(hash)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("Empty CAS should not have any data")
	}

	if _, err := store.Get(hash); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing hash: got %v, want ErrNotFound", err)
	}

	if err := store.Put(hash, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	retrieved, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, retrieved) {
		t.Error("Retrieved data should match original")
	}

	if err := store.Put(SumB3([]byte("different data")), data); err == nil {
		t.Error("Put should fail with mismatched hash")
	}

	store.Delete(hash)
	if store.Len() != 0 {
		t.Errorf("Len after Delete = %d", store.Len())
	}
}

func TestFileCAS(t *testing.T) {
	store, err := NewFileCAS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCAS failed: %v", err)
	}
	defer store.Close()

	data := bytes.Repeat([]byte("parent 0123456789abcdef\n"), 50)
	hash := SumB3(data)

	if _, err := store.Get(hash); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing hash: got %v, want ErrNotFound", err)
	}

	if err := store.Put(hash, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// A second Put of the same object is a no-op.
	if err := store.Put(hash, data); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	raw, err := os.ReadFile(store.path(hash))
	if err != nil {
		t.Fatalf("object file missing: %v", err)
	}
	if len(raw) >= len(data) {
		t.Errorf("object not compressed: %d bytes on disk for %d bytes", len(raw), len(data))
	}

	retrieved, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, retrieved) {
		t.Error("Retrieved data should match original")
	}

	has, err := store.Has(hash)
	if err != nil || !has {
		t.Errorf("Has = %v, %v", has, err)
	}
}

func TestFileCASDetectsCorruption(t *testing.T) {
	store, err := NewFileCAS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCAS failed: %v", err)
	}
	defer store.Close()

	data := []byte("important commit")
	hash := SumB3(data)
	if err := store.Put(hash, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := os.WriteFile(store.path(hash), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(hash); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get on garbage: got %v, want ErrCorrupt", err)
	}

	other := store.enc.EncodeAll([]byte("something else"), nil)
	if err := os.WriteFile(store.path(hash), other, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(hash); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get on swapped content: got %v, want ErrCorrupt", err)
	}
}

func TestMemoryCASConcurrency(t *testing.T) {
	store := NewMemoryCAS()
	data := []byte("concurrent test data")
	hash := SumB3(data)

	done := make(chan bool, 10)
	for i := 0; i < 5; i++ {
		go func() {
			defer func() { done <- true }()
			if err := store.Put(hash, data); err != nil {
				t.Errorf("Concurrent Put failed: %v", err)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		go func() {
			defer func() { done <- true }()
			_, _ = store.Has(hash)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func BenchmarkFileCASGet(b *testing.B) {
	store, err := NewFileCAS(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	data := []byte("benchmark data")
	hash := SumB3(data)
	if err := store.Put(hash, data); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Get(hash)
	}
}
