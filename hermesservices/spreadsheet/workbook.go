package spreadsheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var ErrClosed = errors.New("workbook is closed")

// Workbook appends rows to the first sheet of an xlsx file. Opening an
// existing file continues after its last row; a new file starts with the
// title row.
type Workbook struct {
	path    string
	file    *excelize.File
	sheet   string
	nextRow int
}

func Open(path string, titles []string) (*Workbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	workbook := &Workbook{
		path: path,
	}

	file, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		workbook.file = file
		workbook.sheet = file.GetSheetName(0)

		rows, err := file.GetRows(workbook.sheet)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		workbook.nextRow = len(rows) + 1
	case errors.Is(err, fs.ErrNotExist):
		workbook.file = excelize.NewFile()
		workbook.sheet = workbook.file.GetSheetName(workbook.file.GetActiveSheetIndex())
		workbook.nextRow = 1

		if len(titles) > 0 {
			if err := workbook.Write(stringsToRow(titles)); err != nil {
				_ = workbook.file.Close()
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return workbook, nil
}

func (workbook *Workbook) Path() string {
	return workbook.path
}

// Rows is the number of rows written so far, title row included.
func (workbook *Workbook) Rows() int {
	return workbook.nextRow - 1
}

func (workbook *Workbook) Write(row []any) error {
	if workbook.file == nil {
		return ErrClosed
	}

	cell, err := excelize.CoordinatesToCellName(1, workbook.nextRow)
	if err != nil {
		return err
	}

	if err := workbook.file.SetSheetRow(workbook.sheet, cell, &row); err != nil {
		return err
	}

	workbook.nextRow++

	return nil
}

func (workbook *Workbook) Save() error {
	if workbook.file == nil {
		return ErrClosed
	}

	return workbook.file.SaveAs(workbook.path)
}

// Close releases the file without saving.
func (workbook *Workbook) Close() error {
	if workbook.file == nil {
		return nil
	}

	err := workbook.file.Close()
	workbook.file = nil

	return err
}

func stringsToRow(values []string) []any {
	row := make([]any, 0, len(values))
	for _, value := range values {
		row = append(row, value)
	}

	return row
}
