package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TpexRadar/internal/model"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []model.FlowRow{
		{Code: "3081", Name: "聯亞", Buy: 1234, Sell: 234, Net: 1000},
		{Code: "6488", Name: "環球晶", Buy: 500, Sell: 100, Net: 400},
	}
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("missing UTF-8 BOM")
	}

	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "code,name,buy,sell,net" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "3081,聯亞,1234,234,1000" {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestWriteCSV_EmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("empty rows must still succeed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := strings.TrimSpace(strings.TrimPrefix(string(data), "\xEF\xBB\xBF"))
	if got != "code,name,buy,sell,net" {
		t.Errorf("expected header-only file, got %q", got)
	}
}
