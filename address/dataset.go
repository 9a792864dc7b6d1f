package address

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/util/random"

	"github.com/xuri/excelize/v2"
)

var ErrDatasetMissing = errors.New("dataset not found")

// Dataset is the first sheet of the address workbook.
type Dataset struct {
	Path    string
	Sheet   string
	Header  []string
	Records []Record
}

// LoadDataset reads the workbook at path. Only CIDADE is mandatory; other
// display columns may be missing.
func LoadDataset(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if !contains(header, ColCity) {
		return nil, fmt.Errorf("dataset %s has no %s column", path, ColCity)
	}

	ds := &Dataset{Path: path, Sheet: sheet, Header: header}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := Record{Row: i + 2, Fields: make(map[string]string, len(header))}
		for c, name := range header {
			if name == "" || c >= len(row) {
				continue
			}
			rec.Fields[name] = strings.TrimSpace(row[c])
		}
		readGeo(&rec)
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// readGeo fills the coordinates and status of rec from its raw fields. A
// legacy workbook with LAT/LON but no GEO_STATUS counts as resolved where
// both values parse.
func readGeo(rec *Record) {
	lat, okLat := parseCoord(rec.Fields[ColLat])
	lon, okLon := parseCoord(rec.Fields[ColLon])
	delete(rec.Fields, ColLat)
	delete(rec.Fields, ColLon)
	status, hasStatus := rec.Fields[ColGeoStatus]
	delete(rec.Fields, ColGeoStatus)

	switch {
	case okLat && okLon:
		rec.Lat, rec.Lon, rec.Status = lat, lon, Resolved
	case hasStatus && parseGeoStatus(status) == NotFound:
		rec.Status = NotFound
	default:
		rec.Status = Unresolved
	}
}

// HasColumn reports whether the sheet header contains column.
func (d *Dataset) HasColumn(column string) bool {
	return contains(d.Header, column)
}

// SaveEnriched writes coordinates and status of records back to the
// workbook, adding LAT, LON and GEO_STATUS columns when needed. The file is
// replaced atomically. Unresolved records are left untouched.
func (d *Dataset) SaveEnriched(records []Record) error {
	f, err := excelize.OpenFile(d.Path)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	header := append([]string(nil), d.Header...)
	colIndex := func(name string) (int, error) {
		for i, h := range header {
			if h == name {
				return i + 1, nil
			}
		}
		header = append(header, name)
		cell, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return 0, err
		}
		return len(header), f.SetCellValue(d.Sheet, cell, name)
	}
	latCol, err := colIndex(ColLat)
	if err != nil {
		return err
	}
	lonCol, err := colIndex(ColLon)
	if err != nil {
		return err
	}
	statusCol, err := colIndex(ColGeoStatus)
	if err != nil {
		return err
	}

	byRow := make(map[int]Record, len(records))
	for _, r := range records {
		if r.Status == Unresolved {
			continue
		}
		byRow[r.Row] = r
		values := map[int]any{statusCol: string(r.Status), latCol: "", lonCol: ""}
		if r.HasCoordinates() {
			values[latCol] = *r.Lat
			values[lonCol] = *r.Lon
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col, r.Row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(d.Sheet, cell, v); err != nil {
				return err
			}
		}
	}

	dir, base := filepath.Split(d.Path)
	tmp := filepath.Join(dir, "."+strings.TrimSuffix(base, filepath.Ext(base))+"."+random.Seq(8)+".xlsx")
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("saving dataset: %w", err)
	}
	if err := os.Rename(tmp, d.Path); err != nil {
		os.Remove(tmp)
		return err
	}

	// Readers may still hold the old slice, so build a new one.
	updated := make([]Record, len(d.Records))
	for i, rec := range d.Records {
		if r, ok := byRow[rec.Row]; ok {
			rec.Lat, rec.Lon, rec.Status = r.Lat, r.Lon, r.Status
		}
		updated[i] = rec
	}
	d.Header = header
	d.Records = updated
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Catalog loads the dataset on first use and reloads it when the file
// changes on disk.
type Catalog struct {
	path string

	mu      sync.Mutex
	ds      *Dataset
	modTime time.Time
}

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// Dataset returns a snapshot of the current dataset, or ErrDatasetMissing.
func (c *Catalog) Dataset() (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.path)
	if err != nil {
		c.ds = nil
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, c.path)
		}
		return nil, err
	}
	if c.ds != nil && info.ModTime().Equal(c.modTime) {
		return c.snapshot(), nil
	}

	ds, err := LoadDataset(c.path)
	if err != nil {
		return nil, err
	}
	logger.Infof("dataset %s loaded: %d records", c.path, len(ds.Records))
	c.ds = ds
	c.modTime = info.ModTime()
	return c.snapshot(), nil
}

// snapshot returns a copy readers can keep while Save replaces the fields.
func (c *Catalog) snapshot() *Dataset {
	ds := *c.ds
	return &ds
}

// Save writes the enriched records through the cached dataset and refreshes
// the recorded modification time.
func (c *Catalog) Save(records []Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ds == nil {
		ds, err := LoadDataset(c.path)
		if err != nil {
			return err
		}
		c.ds = ds
	}
	if err := c.ds.SaveEnriched(records); err != nil {
		return err
	}
	if info, err := os.Stat(c.path); err == nil {
		c.modTime = info.ModTime()
	}
	return nil
}
