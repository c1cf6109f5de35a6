package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

// maxCell is the longest text Excel accepts in a single cell.
const maxCell = 32767

var headers = []string{
	"Name",
	"ISSN",
	"eISSN",
	"Category",
	"Index",
	"Quartile",
	"Position",
	"Score",
}

// Service renders database snapshots as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// XLSX returns a workbook (as bytes) with one sheet named after the database,
// e.g. "AISQ 2023", and one row per entry in snapshot order.
func (s *Service) XLSX(ctx context.Context, db *entity.Database) ([]byte, error) {
	if db == nil {
		return nil, fmt.Errorf("export: nil database")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(db)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, e := range db.Entries {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := i + 2
		write := func(col int, v any) {
			if v == nil || v == "" {
				return
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, truncate(entity.Deref(e.Name), maxCell))
		write(2, entity.Deref(e.ISSN))
		write(3, entity.Deref(e.EISSN))
		write(4, entity.Deref(e.Category))
		write(5, entity.Deref(e.Index))
		write(6, entity.Deref(e.Quartile))
		if e.Position != nil {
			write(7, *e.Position)
		}
		if e.Score != nil {
			write(8, *e.Score)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 60) // name
	_ = f.SetColWidth(sheet, "B", "C", 12) // issn
	_ = f.SetColWidth(sheet, "D", "D", 40) // category
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"database", db.ID,
		"version", db.Version,
		"rows", len(db.Entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile writes the XLSX rendering of db to path.
func (s *Service) WriteFile(ctx context.Context, db *entity.Database, path string) error {
	data, err := s.XLSX(ctx, db)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func SheetName(db *entity.Database) string {
	return fmt.Sprintf("%s %d", strings.ToUpper(db.ID), db.Version)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
