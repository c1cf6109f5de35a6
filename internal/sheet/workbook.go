package sheet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Cursor iterates data rows of a worksheet in source order.
type Cursor interface {
	Next() bool
	Row() ([]string, error)
	Close() error
}

// Workbook is a Cursor over the active worksheet of an xlsx file. The first
// row is read on open and exposed through Header.
type Workbook struct {
	file   *excelize.File
	rows   *excelize.Rows
	sheet  string
	header []string
}

// OpenWorkbook opens path and positions the cursor after the header row.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			_ = f.Close()
			return nil, fmt.Errorf("open workbook: no worksheets")
		}
		sheet = list[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}

	w := &Workbook{file: f, rows: rows, sheet: sheet}
	if rows.Next() {
		if w.header, err = rows.Columns(); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("read header of %q: %w", sheet, err)
		}
	}
	return w, nil
}

func (w *Workbook) Sheet() string { return w.sheet }

func (w *Workbook) Header() []string { return w.header }

func (w *Workbook) Next() bool { return w.rows.Next() }

// Row returns the raw cell values of the current row, so numeric scores are
// not affected by the cell number format.
func (w *Workbook) Row() ([]string, error) {
	return w.rows.Columns(excelize.Options{RawCellValue: true})
}

func (w *Workbook) Close() error {
	rerr := w.rows.Close()
	ferr := w.file.Close()
	if rerr != nil {
		return rerr
	}
	return ferr
}

// Decrypt writes an unprotected copy of a password-protected workbook and
// returns its path together with a cleanup func that removes it. When the
// password does not open the file the original path is returned unchanged
// and later parsing reports the failure. cleanup is never nil.
func Decrypt(path, password string, logger *slog.Logger) (string, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() {}
	if password == "" {
		return path, noop, nil
	}

	f, err := excelize.OpenFile(path, excelize.Options{Password: password})
	if err != nil {
		logger.Warn("sheet.decrypt.failed", "path", path, "error", err)
		return path, noop, nil
	}
	defer f.Close()

	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".xlsx"
	}
	tmp, err := os.CreateTemp("", "uefiscdi-*"+ext)
	if err != nil {
		return path, noop, fmt.Errorf("decrypt: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	cleanup := func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("sheet.decrypt.cleanup_failed", "path", tmpPath, "error", err)
		}
	}

	// an empty Options drops the password so the copy is written in the clear
	if err := f.SaveAs(tmpPath, excelize.Options{}); err != nil {
		cleanup()
		return path, noop, fmt.Errorf("decrypt: write plain copy: %w", err)
	}

	logger.Debug("sheet.decrypt.ok", "path", path, "plain", tmpPath)
	return tmpPath, cleanup, nil
}
