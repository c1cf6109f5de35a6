package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/pdftext"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fakeReader serves fixed pages and counts how often it was asked.
type fakeReader struct {
	pages [][]pdftext.Fragment
	calls int
}

func (f *fakeReader) Pages(context.Context, string) ([][]pdftext.Fragment, error) {
	f.calls++
	return f.pages, nil
}

// words lays out one line of word fragments on baseline y.
func words(y float64, ws ...string) []pdftext.Fragment {
	var out []pdftext.Fragment
	x := 10.0
	for _, w := range ws {
		width := float64(len(w)) * 5
		out = append(out, pdftext.Fragment{Text: w, X: x, Y: y, Width: width, FontSize: 10})
		x += width + 5
	}
	return out
}

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractZone2023(t *testing.T) {
	var page []pdftext.Fragment
	page = append(page, words(800, "Categoria", "WOS", "-", "Index", "Revista", "ISSN", "eISSN", "Zona", "Pozitia")...)
	page = append(page, words(780, "Computer", "Science", "-", "SCIE", "Journal", "Of", "Testing", "1234-5678", "N/A", "Q2", "7")...)
	reader := &fakeReader{pages: [][]pdftext.Fragment{page}}

	db, err := NewExtractor(reader, discard()).Extract(context.Background(), Request{
		Kind: constants.JIFQuartile,
		Year: 2023,
		Path: touch(t, "zone.pdf"),
		URL:  "https://example.org/zone.pdf",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := &entity.Database{
		ID:      "jifq",
		Version: 2023,
		URL:     "https://example.org/zone.pdf",
		Entries: []entity.Entry{{
			Category: entity.Ptr("Computer Science"),
			Index:    entity.Ptr("SCIE"),
			Name:     entity.Ptr("Journal Of Testing"),
			ISSN:     entity.Ptr("1234-5678"),
			Quartile: entity.Ptr("Q2"),
			Position: entity.Ptr(7),
		}},
	}
	if diff := cmp.Diff(want, db); diff != "" {
		t.Errorf("database mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractScoreSheet(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Journal name", "ISSN", "eISSN", "RIS"},
		{"Journal A", "1234-5678", "8765-4321", 3.14},
		{"Journal B", "1111-2222", "2222-3333"},
		{"Journal C", "3333-4444", "4444-5555", 1.0},
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
	_ = f.Close()

	db, err := NewExtractor(&fakeReader{}, discard()).Extract(context.Background(), Request{
		Kind: constants.RISScore,
		Year: 2023,
		Path: path,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []entity.Entry{{
		Name:  entity.Ptr("Journal A"),
		ISSN:  entity.Ptr("1234-5678"),
		EISSN: entity.Ptr("8765-4321"),
		Score: entity.Ptr(3.14),
	}}
	if diff := cmp.Diff(want, db.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if db.URL != path {
		t.Errorf("URL = %q, want the path", db.URL)
	}
}

func TestExtractUnsupportedFailsBeforeIO(t *testing.T) {
	reader := &fakeReader{}
	x := NewExtractor(reader, discard())

	for _, req := range []Request{
		{Kind: constants.AISQuartile, Year: 2019, Path: "/does/not/exist.pdf"},
		{Kind: "nope", Year: 2023, Path: "/does/not/exist.pdf"},
		{Kind: constants.AISScore, Year: 2024, Path: "/does/not/exist.xlsx"},
		{Kind: constants.RISScore, Year: 2024, Path: "/does/not/exist.xlsx"},
		{Kind: constants.RIFScore, Year: 2024, Path: "/does/not/exist.xlsx"},
	} {
		_, err := x.Extract(context.Background(), req)
		if !common.IsConfigError(err) || !errors.Is(err, common.ErrUnsupported) {
			t.Errorf("%+v: err = %v, want unsupported config error", req, err)
		}
		if errors.Is(err, os.ErrNotExist) {
			t.Errorf("%+v: file was touched", req)
		}
	}
	if reader.calls != 0 {
		t.Errorf("reader called %d times", reader.calls)
	}
}

func TestExtractFailures(t *testing.T) {
	x := NewExtractor(&fakeReader{pages: [][]pdftext.Fragment{words(10, "nothing", "here")}}, discard())

	_, err := x.Extract(context.Background(), Request{Kind: constants.JIFQuartile, Year: 2024, Path: filepath.Join(t.TempDir(), "missing.pdf")})
	var app *common.AppError
	if !errors.As(err, &app) || app.Code != common.CodeTransport || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want transport error", err)
	}

	_, err = x.Extract(context.Background(), Request{Kind: constants.JIFQuartile, Year: 2024, Path: touch(t, "empty.pdf")})
	if !errors.As(err, &app) || app.Code != common.CodeParse || !errors.Is(err, common.ErrNoEntries) {
		t.Errorf("no rows: err = %v, want ErrNoEntries", err)
	}
}

func TestSupported(t *testing.T) {
	got := Supported()
	if len(got) != 7 {
		t.Fatalf("Supported() has %d releases, want 7", len(got))
	}
	if got[0].Year != 2024 || got[0].Kind != constants.AISQuartile {
		t.Errorf("first release = %+v", got[0])
	}
	if diff := cmp.Diff([]int{2024, 2023}, Years()); diff != "" {
		t.Errorf("Years() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]constants.Database{constants.AISQuartile, constants.JIFQuartile}, Kinds(2024)); diff != "" {
		t.Errorf("Kinds(2024) mismatch (-want +got):\n%s", diff)
	}
	if got := Kinds(2023); len(got) != 5 {
		t.Errorf("Kinds(2023) = %v", got)
	}
}
