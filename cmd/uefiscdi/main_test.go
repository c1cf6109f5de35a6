package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// run executes the CLI against a throwaway JSON cache.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func scoreSheet(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	rows := [][]any{
		{"Journal name", "ISSN", "eISSN", "RIS"},
		{"Journal A", "1234-5678", "8765-4321", 3.14},
		{"Review B", "2345-6789", "N/A", 0.5},
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &rows[i]); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "ris.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("UEFISCDI_CONFIG", "")
	t.Setenv("UEFISCDI_CACHE_BACKEND", "json")
	t.Setenv("UEFISCDI_CACHE_DIR", t.TempDir())
	t.Setenv("UEFISCDI_VERSION", "2023")
}

func TestDatabases(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "databases")
	if err != nil {
		t.Fatalf("databases: %v", err)
	}
	for _, want := range []string{"DATABASE", "aisq", "rif", "2024", "XLSX"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestExtractCommand(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "extract", "ris", "2023", scoreSheet(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var doc struct {
		ID      string           `json:"id"`
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if doc.ID != "ris" || len(doc.Entries) != 2 {
		t.Errorf("got id %q with %d entries", doc.ID, len(doc.Entries))
	}
}

func TestIndexSearchExport(t *testing.T) {
	setupEnv(t)
	src := scoreSheet(t)

	if out, err := run(t, "index", "-d", "ris", "--url", src); err != nil {
		t.Fatalf("index: %v", err)
	} else if !strings.Contains(out, "ris 2023: 2 entries") {
		t.Errorf("index output = %q", out)
	}

	out, err := run(t, "search", "ris", "-q", "review")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var hits []map[string]any
	if err := json.Unmarshal([]byte(out), &hits); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(hits) != 1 || hits[0]["name"] != "Review B" {
		t.Errorf("hits = %v", hits)
	}

	if out, err := run(t, "resolve", "ris", "1234-5678"); err != nil || !strings.Contains(out, "Journal A") {
		t.Errorf("resolve = %q, %v", out, err)
	}

	dest := filepath.Join(t.TempDir(), "ris.xlsx")
	if _, err := run(t, "export", "ris", "-o", dest); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenFile(dest)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("RIS 2023")
	if len(rows) != 3 {
		t.Errorf("export has %d rows, want 3", len(rows))
	}

	if out, err := run(t, "cache", "list"); err != nil || !strings.Contains(out, "ris") {
		t.Errorf("cache list = %q, %v", out, err)
	}
}

func TestUnknownDatabase(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "search", "nope"); err == nil {
		t.Fatal("expected error for unknown database")
	}
}
