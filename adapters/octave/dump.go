// Package octave reads and writes sample matrices as Octave/MATLAB scripts of
// the form
//
//	D = .1 * [
//	 120 131 ...;
//	 ...
//	];
//
// so a dump can be loaded and plotted with `source("improved.m")`.
package octave

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocrack/domain/core"
	"gocrack/domain/series"
	"gocrack/internal/errors"
)

const header = "D = .1 * [\n"

// Encode writes m in dump layout
func Encode(w io.Writer, m *series.Matrix) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(header)
	buf := make([]byte, 0, 16)
	for r := 0; r < m.Days(); r++ {
		for _, v := range m.Row(r) {
			buf = append(buf[:0], ' ')
			buf = strconv.AppendInt(buf, int64(v), 10)
			bw.Write(buf)
		}
		bw.WriteString(";\n")
	}
	bw.WriteString("];")
	return bw.Flush()
}

// Decode parses a dump written by Encode. The scale prefix is ignored; the
// integers are returned as stored.
func Decode(r io.Reader) (*series.Matrix, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	open := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if open < 0 || end < open {
		return nil, fmt.Errorf("%w: missing matrix brackets", core.ErrUnsupportedFormat)
	}

	var rows [][]int32
	for i, line := range strings.Split(text[open+1:end], ";") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		row := make([]int32, len(fields))
		for c, f := range fields {
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", core.ErrUnsupportedFormat, i, err)
			}
			row[c] = int32(v)
		}
		rows = append(rows, row)
	}
	return series.FromRows(rows)
}

// Store reads and writes dump files on the local file system
type Store struct{}

func NewStore() *Store { return &Store{} }

// ReadMatrix loads the dump at path
func (s *Store) ReadMatrix(ctx context.Context, path string) (*series.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return m, nil
}

// WriteMatrix replaces the dump at path. The file is written beside its
// final name and renamed, so readers never see a partial matrix.
func (s *Store) WriteMatrix(ctx context.Context, path string, m *series.Matrix) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.IOError(path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, m); err != nil {
		tmp.Close()
		return errors.IOError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.IOError(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
