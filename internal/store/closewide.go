package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"rsrank/internal/domain"
	"rsrank/internal/prices"
	"rsrank/internal/util"
)

// LoadCloseWide reads a wide-format close CSV into a price matrix. Rows are
// instruments, columns are sessions: the first header cell labels the row
// key and every other header cell is a date. Header cells that do not parse
// as dates are dropped together with their column; empty or non-numeric
// price cells become gaps in that instrument's series.
func LoadCloseWide(path string) (*prices.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening close csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading close csv header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("close csv %s: header has no date columns", path)
	}

	// Column index -> session date, for the columns that parse.
	cols := make(map[int]time.Time, len(header)-1)
	for i := 1; i < len(header); i++ {
		d, err := util.ParseDateArg(header[i])
		if err != nil {
			continue
		}
		cols[i] = d
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("close csv %s: no parseable date columns", path)
	}

	m := prices.NewMatrix()
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading close csv %s: %w", path, err)
		}
		if len(rec) == 0 || rec[0] == "" {
			continue
		}

		var pts []domain.PricePoint
		for i := 1; i < len(rec); i++ {
			d, ok := cols[i]
			if !ok || rec[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				continue
			}
			pts = append(pts, domain.PricePoint{Date: d, Close: v})
		}
		m.Add(rec[0], prices.NewSeries(pts))
	}
	return m, nil
}

// SaveCloseWide writes the matrix back out in the wide format LoadCloseWide
// reads. The column set is the union of all session dates; instruments with
// no price on a column get an empty cell.
func SaveCloseWide(path string, m *prices.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating close csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := m.Columns()

	header := make([]string, 0, len(columns)+1)
	header = append(header, "ticker")
	for _, d := range columns {
		header = append(header, util.FormatDate(d))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, ticker := range m.Tickers() {
		s, _ := m.Series(ticker)
		byDate := make(map[time.Time]float64, s.Len())
		for _, p := range s.Points() {
			byDate[p.Date] = p.Close
		}

		rec := make([]string, 0, len(columns)+1)
		rec = append(rec, ticker)
		for _, d := range columns {
			if v, ok := byDate[d]; ok {
				rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
