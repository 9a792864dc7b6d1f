package address

import (
	"encoding/csv"
	"io"
)

// DisplayColumns is the allow-list of columns shown and exported, in order.
var DisplayColumns = []string{ColID, ColAddress, ColNeighborhood, ColCity, ColAccessPoint, ColCTO, ColFacility}

// Table is a projected, display-ready record set.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Project keeps the display columns present in header. LAT and LON are
// appended once any record went through geocoding; rows without
// coordinates keep empty cells there.
func Project(header []string, records []Record) Table {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	cols := make([]string, 0, len(DisplayColumns)+2)
	for _, c := range DisplayColumns {
		if present[c] {
			cols = append(cols, c)
		}
	}
	geocoded := false
	for _, r := range records {
		if r.Status != Unresolved {
			geocoded = true
			break
		}
	}
	if geocoded {
		cols = append(cols, ColLat, ColLon)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			switch c {
			case ColLat:
				row[i] = formatCoord(r.Lat)
			case ColLon:
				row[i] = formatCoord(r.Lon)
			default:
				row[i] = r.Get(c)
			}
		}
		rows = append(rows, row)
	}
	return Table{Columns: cols, Rows: rows}
}

// WriteCSV writes t as UTF-8 comma separated values with a header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
