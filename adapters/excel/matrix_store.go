package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocrack/domain/core"
	"gocrack/domain/series"
	"gocrack/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	sheet     = "Sheet1"
	dayHeader = "day"
)

// MatrixStore reads and writes sample matrices as spreadsheets. The first row
// is a header ("day", "slot_1", ...); each following row is one day.
type MatrixStore struct{}

func NewMatrixStore() *MatrixStore { return &MatrixStore{} }

// Supports reports whether path has a spreadsheet extension
func Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ReadMatrix loads an .xlsx (Sheet1) or .csv file
func (s *MatrixStore) ReadMatrix(ctx context.Context, path string) (*series.Matrix, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, errors.IOError(path, err)
	}

	m, err := parseRows(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	log.Printf("[MatrixStore] Read %s (%d days x %d measures)", path, m.Days(), m.Measures())
	return m, nil
}

// WriteMatrix saves m as .xlsx or .csv depending on the extension of path
func (s *MatrixStore) WriteMatrix(ctx context.Context, path string, m *series.Matrix) error {
	rows := formatRows(m)

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = writeCSV(path, rows)
	case ".xlsx":
		err = writeXLSX(path, rows)
	default:
		return fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, path)
	}
	if err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return csv.NewReader(file).ReadAll()
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for r, row := range rows {
		values := make([]any, len(row))
		for c, v := range row {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				values[c] = n
			} else {
				values[c] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func formatRows(m *series.Matrix) [][]string {
	header := make([]string, 0, m.Measures()+1)
	header = append(header, dayHeader)
	for c := 1; c <= m.Measures(); c++ {
		header = append(header, fmt.Sprintf("slot_%d", c))
	}

	rows := make([][]string, 0, m.Days()+1)
	rows = append(rows, header)
	for r := 0; r < m.Days(); r++ {
		row := make([]string, 0, m.Measures()+1)
		row = append(row, strconv.Itoa(r+1))
		for _, v := range m.Row(r) {
			row = append(row, strconv.FormatInt(int64(v), 10))
		}
		rows = append(rows, row)
	}
	return rows
}

// parseRows accepts an optional header row and an optional leading day
// column, identified by the header "day".
func parseRows(rows [][]string) (*series.Matrix, error) {
	skipDay := false
	if len(rows) > 0 && !numericRow(rows[0]) {
		skipDay = len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), dayHeader)
		rows = rows[1:]
	}

	out := make([][]int32, 0, len(rows))
	for r, row := range rows {
		if skipDay && len(row) > 0 {
			row = row[1:]
		}
		values := make([]int32, len(row))
		for c, cell := range row {
			v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", core.ErrUnsupportedFormat, r+1, c+1, err)
			}
			values[c] = int32(v)
		}
		out = append(out, values)
	}
	return series.FromRows(out)
}

func numericRow(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err != nil {
			return false
		}
	}
	return true
}
