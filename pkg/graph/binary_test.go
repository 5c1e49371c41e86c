package graph

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBinaryRoundTrip(t *testing.T) {
	g := twoIslands()

	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	got, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if !reflect.DeepEqual(g, got) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, g)
	}
}

func TestReadBinaryBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.bin")
	if err := os.WriteFile(path, []byte("not a graph cache"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadBinary(path); err == nil {
		t.Error("ReadBinary should reject a file with bad magic")
	}
}

func TestReadBinaryTruncated(t *testing.T) {
	g := twoIslands()

	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadBinary(path); err == nil {
		t.Error("ReadBinary should fail on a truncated file")
	}
}

func TestReadBinaryMissingFile(t *testing.T) {
	if _, err := ReadBinary(filepath.Join(t.TempDir(), "absent.bin")); err == nil {
		t.Error("ReadBinary should fail on a missing file")
	}
}
