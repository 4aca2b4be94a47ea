package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/boolnet/internal/store"
)

func testArchive(t *testing.T, n int) *Archive {
	t.Helper()
	a := &Archive{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	for i := range n {
		r, err := store.NewReport("ring-30", "fp", "lambda_q",
			map[string]int{"i": i}, map[string]float64{"value": 1.5}, time.Millisecond)
		if err != nil {
			t.Fatalf("NewReport: %v", err)
		}
		r.ID = "r" + string(rune('a'+i))
		r.CreatedAt = a.CreatedAt.Add(time.Duration(i) * time.Minute)
		a.Reports = append(a.Reports, *r)
	}
	return a
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archive.json.gz")
	a := testArchive(t, 3)

	h, err := Write(path, a, map[string]string{"network": "ring-30"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if h.ReportCount != 3 || h.Version != FormatVersion {
		t.Errorf("header = %+v", h)
	}
	if !strings.HasPrefix(h.Checksum, "sha256:") {
		t.Errorf("checksum = %q, want sha256 prefix", h.Checksum)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 600", perm)
	}

	gotHeader, got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if gotHeader.Metadata["network"] != "ring-30" {
		t.Errorf("metadata = %v", gotHeader.Metadata)
	}
	if len(got.Reports) != 3 {
		t.Fatalf("read %d reports, want 3", len(got.Reports))
	}
	if got.Reports[1].ID != "rb" || string(got.Reports[1].Params) != `{"i":1}` {
		t.Errorf("report[1] = %+v", got.Reports[1])
	}
	if !got.Reports[2].CreatedAt.Equal(a.Reports[2].CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.Reports[2].CreatedAt, a.Reports[2].CreatedAt)
	}
}

func TestReadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json.gz")
	if _, err := Write(path, testArchive(t, 2), nil); err != nil {
		t.Fatal(err)
	}
	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if h.ReportCount != 2 {
		t.Errorf("ReportCount = %d, want 2", h.ReportCount)
	}
	if h.Metadata != nil {
		t.Errorf("Metadata = %v, want nil", h.Metadata)
	}
}

func TestVerifyChecksum_DetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json.gz")
	if _, err := Write(path, testArchive(t, 2), nil); err != nil {
		t.Fatal(err)
	}
	if err := VerifyChecksum(path); err != nil {
		t.Fatalf("VerifyChecksum() on intact file = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-5] ^= 0xff
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	err = VerifyChecksum(path)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("VerifyChecksum() = %v, want checksum mismatch", err)
	}
	if _, _, err := Read(path); err == nil {
		t.Error("Read() of corrupted archive should fail")
	}
}

func TestRead_RejectsBadHeader(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content []byte
		wantErr string
	}{
		{"not json", []byte("hello\n"), "parsing header"},
		{"wrong version", []byte(`{"version":99}` + "\n"), "unsupported archive version"},
		{"no newline", []byte(`{"version":1}`), "reading header line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-"))
			if err := os.WriteFile(path, tt.content, 0600); err != nil {
				t.Fatal(err)
			}
			_, _, err := Read(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Read() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Read() of missing file should fail")
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	a := checksum([]byte("boolnet"))
	b := checksum(bytes.Clone([]byte("boolnet")))
	if a != b {
		t.Errorf("checksum not deterministic: %s vs %s", a, b)
	}
	if a == checksum([]byte("boolnets")) {
		t.Error("different input produced same checksum")
	}
}
