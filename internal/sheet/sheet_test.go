package sheet

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNormalizeScoreRow4(t *testing.T) {
	n := NewNormalizer(ScoreRow4, discard())

	tests := []struct {
		name    string
		row     []string
		want    entity.Entry
		outcome Outcome
	}{
		{
			name: "full row",
			row:  []string{"JOURNAL A", "1234-5678", "8765-4321", "3.14"},
			want: entity.Entry{
				Name:  entity.Ptr("Journal A"),
				ISSN:  entity.Ptr("1234-5678"),
				EISSN: entity.Ptr("8765-4321"),
				Score: entity.Ptr(3.14),
			},
			outcome: Emit,
		},
		{
			name: "malformed issn and score become nil",
			row:  []string{"Journal B", "N/A", "12345", "n/a"},
			want: entity.Entry{
				Name: entity.Ptr("Journal B"),
			},
			outcome: Emit,
		},
		{
			name: "non-finite score becomes nil",
			row:  []string{"Journal A", "1234-5678", "8765-4321", "NaN"},
			want: entity.Entry{
				Name:  entity.Ptr("Journal A"),
				ISSN:  entity.Ptr("1234-5678"),
				EISSN: entity.Ptr("8765-4321"),
			},
			outcome: Emit,
		},
		{
			name: "infinite score becomes nil",
			row:  []string{"Journal A", "1234-5678", "8765-4321", "-Infinity"},
			want: entity.Entry{
				Name:  entity.Ptr("Journal A"),
				ISSN:  entity.Ptr("1234-5678"),
				EISSN: entity.Ptr("8765-4321"),
			},
			outcome: Emit,
		},
		{
			name:    "empty score stops",
			row:     []string{"Journal C", "1234-5678", "8765-4321", ""},
			outcome: Stop,
		},
		{
			name:    "trimmed trailing cells stop",
			row:     []string{"Journal C", "1234-5678"},
			outcome: Stop,
		},
		{
			name:    "missing name is skipped",
			row:     []string{"", "1234-5678", "", "1.0"},
			outcome: Skip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := n.Normalize(tt.row)
			if outcome != tt.outcome {
				t.Fatalf("outcome = %v, want %v", outcome, tt.outcome)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("entry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeScoreRow6(t *testing.T) {
	n := NewNormalizer(ScoreRow6, discard())

	got, outcome := n.Normalize([]string{"acta testing", "1234-567x", "", "COMPUTER SCIENCE - scie", "0.75", "q1"})
	if outcome != Emit {
		t.Fatalf("outcome = %v", outcome)
	}
	want := entity.Entry{
		Category: entity.Ptr("Computer Science"),
		Index:    entity.Ptr("SCIE"),
		Name:     entity.Ptr("Acta Testing"),
		ISSN:     entity.Ptr("1234-567X"),
		Quartile: entity.Ptr("Q1"),
		Score:    entity.Ptr(0.75),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	got, outcome = n.Normalize([]string{"Acta", "", "", "Physics", "1", "N/A"})
	if outcome != Emit || got.Index != nil || got.Quartile != nil || *got.Category != "Physics" {
		t.Errorf("no separator: %+v %v", got, outcome)
	}

	if _, outcome = n.Normalize([]string{"Acta", "", "", "Physics - WXYZ", "1", "Q1"}); outcome != Skip {
		t.Errorf("unknown index outcome = %v, want skip", outcome)
	}
}

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		header []string
		want   Layout
		ok     bool
	}{
		{[]string{"Journal name", "ISSN", "eISSN", "RIS"}, ScoreRow4, true},
		{[]string{"Journal name", "ISSN", "eISSN", "Category - Index", "AIS", "Quartile"}, ScoreRow6, true},
		{[]string{"Journal", "ISSN"}, 0, false},
	}
	for _, tt := range tests {
		got, ok := DetectLayout(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectLayout(%v) = %v, %v; want %v, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

// writeWorkbook saves rows to a new xlsx file under dir.
func writeWorkbook(t *testing.T, dir, name string, rows [][]any, opts ...excelize.Options) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path, opts...); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestWorkbookCursor(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "ris.xlsx", [][]any{
		{"Journal name", "ISSN", "eISSN", "RIS"},
		{"Journal A", "1234-5678", "8765-4321", 3.14},
		{"Journal B", "1111-2222"},
	})

	w, err := OpenWorkbook(path)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	defer w.Close()

	if diff := cmp.Diff([]string{"Journal name", "ISSN", "eISSN", "RIS"}, w.Header()); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	var rows [][]string
	for w.Next() {
		row, err := w.Row()
		if err != nil {
			t.Fatalf("Row: %v", err)
		}
		rows = append(rows, row)
	}
	want := [][]string{
		{"Journal A", "1234-5678", "8765-4321", "3.14"},
		{"Journal B", "1111-2222"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecrypt(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "ais.xlsx", [][]any{
		{"Journal name", "ISSN", "eISSN", "AIS"},
		{"Journal A", "1234-5678", "8765-4321", 1.5},
	}, excelize.Options{Password: "uefiscdi"})

	if _, err := OpenWorkbook(path); err == nil {
		t.Fatalf("protected workbook opened without a password")
	}

	got, cleanup, err := Decrypt(path, "wrong", discard())
	if err != nil {
		t.Fatalf("Decrypt wrong password: %v", err)
	}
	cleanup()
	if got != path {
		t.Errorf("wrong password returned %q, want original path", got)
	}

	plain, cleanup, err := Decrypt(path, "uefiscdi", discard())
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain == path {
		t.Fatalf("Decrypt returned the original path")
	}

	w, err := OpenWorkbook(plain)
	if err != nil {
		t.Fatalf("OpenWorkbook(plain): %v", err)
	}
	if !w.Next() {
		t.Fatalf("no data row in decrypted copy")
	}
	row, _ := w.Row()
	_ = w.Close()
	if len(row) != 4 || row[0] != "Journal A" {
		t.Errorf("row = %v", row)
	}

	cleanup()
	if _, err := OpenWorkbook(plain); err == nil {
		t.Errorf("cleanup left %q behind", plain)
	}
}
