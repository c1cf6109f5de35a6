package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

func testDatabase() *entity.Database {
	return &entity.Database{
		ID:      "aisq",
		Version: 2023,
		Entries: []entity.Entry{
			{
				Name:     entity.Ptr("Journal Of Testing"),
				ISSN:     entity.Ptr("1234-5678"),
				Category: entity.Ptr("Physics"),
				Index:    entity.Ptr("SCIE"),
				Quartile: entity.Ptr("Q1"),
				Position: entity.Ptr(3),
			},
			{
				Name:  entity.Ptr("Acta Ecologica"),
				EISSN: entity.Ptr("2345-6789"),
				Score: entity.Ptr(0.25),
			},
		},
	}
}

func TestXLSX(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.XLSX(context.Background(), testDatabase())
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("AISQ 2023")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		{"Name", "ISSN", "eISSN", "Category", "Index", "Quartile", "Position", "Score"},
		{"Journal Of Testing", "1234-5678", "", "Physics", "SCIE", "Q1", "3"},
		{"Acta Ecologica", "", "2345-6789", "", "", "", "", "0.25"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := NewService(nil).WriteFile(context.Background(), testDatabase(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); !cmp.Equal(got, []string{"AISQ 2023"}) {
		t.Errorf("sheets = %v", got)
	}
}

func TestXLSXNilDatabase(t *testing.T) {
	if _, err := NewService(nil).XLSX(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil database")
	}
}
