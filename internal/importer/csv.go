package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
)

// Названия колонок выгрузки совместных появлений.
const (
	colBrand  = "brand"
	colArtist = "artist"
	colGender = "gender"

	brandDimPrefix = "bd_dim"
	celebDimPrefix = "dim"

	colPersona     = "persona"
	colDescription = "desc"
)

// CSVError указывает место ошибки в файле. Line считается с 1 и включает заголовок.
type CSVError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (c *CSVError) Error() string {
	if c.Column == "" {
		return fmt.Sprintf("%s: %s:%d: %v", e.ErrMalformedCSV, c.File, c.Line, c.Err)
	}
	return fmt.Sprintf("%s: %s:%d: column %q: %v", e.ErrMalformedCSV, c.File, c.Line, c.Column, c.Err)
}

func (c *CSVError) Unwrap() []error {
	return []error{e.ErrMalformedCSV, c.Err}
}

// table — CSV-файл с индексом колонок по заголовку.
type table struct {
	file    string
	reader  *csv.Reader
	columns map[string]int
	line    int
}

func openTable(r io.Reader, file string, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return nil, &CSVError{File: file, Line: 1, Err: err}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, &CSVError{File: file, Line: 1, Column: name, Err: errors.New("missing column")}
		}
	}

	return &table{file: file, reader: reader, columns: columns, line: 1}, nil
}

// next возвращает следующую запись или io.EOF.
func (t *table) next() ([]string, error) {
	record, err := t.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		line := t.line + 1
		if errors.As(err, &perr) {
			line = perr.Line
		}
		return nil, &CSVError{File: t.file, Line: line, Err: err}
	}
	t.line, _ = t.reader.FieldPos(0)
	return record, nil
}

func (t *table) text(record []string, column string) string {
	return strings.TrimSpace(record[t.columns[column]])
}

func (t *table) float(record []string, column string) (float32, error) {
	raw := t.text(record, column)
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, &CSVError{File: t.file, Line: t.line, Column: column, Err: fmt.Errorf("invalid number %q", raw)}
	}
	return float32(v), nil
}

func (t *table) floats(record []string, columns []string) ([]float32, error) {
	out := make([]float32, len(columns))
	for i, col := range columns {
		v, err := t.float(record, col)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func numbered(prefix string, n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = prefix + strconv.Itoa(i)
	}
	return cols
}

func ageColumns() []string {
	cols := make([]string, domain.AgeBucketCount)
	for i, b := range domain.AgeBuckets {
		cols[i] = b.Label
	}
	return cols
}

// ParseJoined читает таблицу совместных появлений: brand, artist, bd_dim0..1023, gender,
// восемь возрастных колонок, тринадцать категорий и dim0..1023. Порядок колонок не важен.
func ParseJoined(r io.Reader, file string) ([]domain.JoinedRow, error) {
	brandCols := numbered(brandDimPrefix, domain.BrandDim)
	celebCols := numbered(celebDimPrefix, domain.CelebrityDim)
	ageCols := ageColumns()
	catCols := domain.ProductCategories[:]

	required := []string{colBrand, colArtist, colGender}
	required = append(required, brandCols...)
	required = append(required, ageCols...)
	required = append(required, catCols...)
	required = append(required, celebCols...)

	t, err := openTable(r, file, required...)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.JoinedRow, 0)
	for {
		record, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		artist := t.text(record, colArtist)
		if artist == "" {
			return nil, &CSVError{File: file, Line: t.line, Column: colArtist, Err: errors.New("empty artist")}
		}

		brandVec, err := t.floats(record, brandCols)
		if err != nil {
			return nil, err
		}
		gender, err := t.float(record, colGender)
		if err != nil {
			return nil, err
		}
		ages, err := t.floats(record, ageCols)
		if err != nil {
			return nil, err
		}
		cats, err := t.floats(record, catCols)
		if err != nil {
			return nil, err
		}
		celebVec, err := t.floats(record, celebCols)
		if err != nil {
			return nil, err
		}

		var buckets [domain.AgeBucketCount]float32
		copy(buckets[:], ages)
		var categories [domain.CategoryDim]float32
		copy(categories[:], cats)

		rows = append(rows, *domain.NewJoinedRow(t.text(record, colBrand), artist, brandVec, gender, buckets, categories, celebVec))
	}

	return rows, nil
}

// ParsePersonas читает описания артистов (artist, persona).
func ParsePersonas(r io.Reader, file string) ([]domain.Persona, error) {
	t, err := openTable(r, file, colArtist, colPersona)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Persona, 0)
	for {
		record, err := t.next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		artist := t.text(record, colArtist)
		if artist == "" {
			continue
		}
		out = append(out, domain.Persona{Artist: artist, Text: t.text(record, colPersona)})
	}
}

// ParseBrandDescriptions читает описания брендов (brand, desc).
func ParseBrandDescriptions(r io.Reader, file string) ([]domain.BrandDescription, error) {
	t, err := openTable(r, file, colBrand, colDescription)
	if err != nil {
		return nil, err
	}

	out := make([]domain.BrandDescription, 0)
	for {
		record, err := t.next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		brand := t.text(record, colBrand)
		if brand == "" {
			continue
		}
		out = append(out, domain.BrandDescription{Brand: brand, Text: t.text(record, colDescription)})
	}
}
