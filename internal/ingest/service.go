// Package ingest reads uploaded marketplace exports into one unified table.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hasancagrigungor/ravla/internal/domain/frame"
	"github.com/hasancagrigungor/ravla/internal/schema"
	"github.com/hasancagrigungor/ravla/pkg/logger"
)

// ErrNoUsableData means every input file contributed zero canonical columns.
var ErrNoUsableData = errors.New("no usable columns in any input file")

// NamedFile is one uploaded file with its originating name.
type NamedFile struct {
	Name string
	Data []byte
}

// Result pairs the typed table with the raw unified frame it was built from.
// Raw keeps the unmatched original columns so a later manual binding can
// still reach them.
type Result struct {
	Table *Table
	Raw   *frame.Frame
}

type Service struct {
	aliases   schema.AliasTable
	delimiter rune
	logger    logger.Logger
}

func NewService(aliases schema.AliasTable, delimiter string, log logger.Logger) *Service {
	d := ';'
	if delimiter != "" {
		d = []rune(delimiter)[0]
	}
	return &Service{
		aliases:   aliases,
		delimiter: d,
		logger:    log,
	}
}

// IngestWorkbook reads every sheet of an xlsx workbook, drops fully-empty
// rows, keeps canonical columns only and unifies the sheets. A sheet with no
// matching columns is skipped with a warning; a workbook where all sheets are
// skipped yields ErrNoUsableData.
func (s *Service) IngestWorkbook(data []byte) (*Result, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	var frames []*frame.Frame
	var rawFrames []*frame.Frame
	var warnings []string

	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sheet %q: %v, skipped", sheet, err))
			continue
		}
		if len(rows) < 2 {
			continue
		}

		f := frame.New(rows[0], rows[1:])
		f.DropEmptyRecords()

		resolved, matched := schema.Resolve(f, s.aliases, false)
		if len(matched) == 0 {
			warnings = append(warnings, fmt.Sprintf("sheet %q: no matching columns, skipped", sheet))
			continue
		}
		frames = append(frames, resolved)

		raw, _ := schema.Resolve(f, s.aliases, true)
		rawFrames = append(rawFrames, raw)
	}

	for _, w := range warnings {
		s.logger.Warn("workbook ingest", logger.String("reason", w))
	}
	if len(frames) == 0 {
		return nil, ErrNoUsableData
	}

	unified := frame.Concat(frames...)
	unified.DropEmptyRecords()
	raw := frame.Concat(rawFrames...)
	raw.DropEmptyRecords()
	return &Result{Table: BuildTable(unified, warnings), Raw: raw}, nil
}

// IngestDelimited reads one or more delimited text files of uncertain
// separator and platform, tags every row with a sniffed source label and
// unifies them in upload order. Columns are alias-renamed keeping the
// unmatched ones, so platform-only fields ride along in the side-table.
func (s *Service) IngestDelimited(files []NamedFile) (*Result, error) {
	var frames []*frame.Frame
	var warnings []string

	for _, file := range files {
		f, err := s.readDelimited(file.Data)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, skipped", file.Name, err))
			continue
		}
		f.DropEmptyRecords()

		resolved, matched := schema.Resolve(f, s.aliases, true)
		if len(matched) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: no matching columns, skipped", file.Name))
			continue
		}

		resolved.SetConstant(schema.FieldSource, sniffSource(file.Name))
		frames = append(frames, resolved)
	}

	for _, w := range warnings {
		s.logger.Warn("delimited ingest", logger.String("reason", w))
	}
	if len(frames) == 0 {
		return nil, ErrNoUsableData
	}

	raw := frame.Concat(frames...)
	return &Result{Table: BuildTable(raw, warnings), Raw: raw}, nil
}

// readDelimited tries the primary delimiter first; a single-column result is
// the tell that the separator was wrong, so the file is re-read with the
// sniffed one. Read errors fall back to sniffing too.
func (s *Service) readDelimited(data []byte) (*frame.Frame, error) {
	data = decodePermissive(data)

	f, err := parseCSV(data, s.delimiter)
	if err == nil && f.Width() > 1 {
		return f, nil
	}

	sniffed := sniffDelimiter(data)
	if sniffed != s.delimiter {
		if f2, err2 := parseCSV(data, sniffed); err2 == nil && f2.Width() > 0 {
			return f2, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if f.Width() == 0 {
		return nil, errors.New("empty file")
	}
	return f, nil
}

func parseCSV(data []byte, delimiter rune) (*frame.Frame, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// one bad line must not abort the file
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			break
		}
		records = append(records, rec)
	}
	return frame.New(header, records), nil
}
