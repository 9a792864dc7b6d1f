// Package address loads the CTO address spreadsheet and implements the
// cascading city → access point → facility search over it.
package address

import (
	"strconv"
	"strings"
)

// Column names of the address spreadsheet.
const (
	ColID           = "ID"
	ColAddress      = "Endereço"
	ColNeighborhood = "BAIRRO"
	ColCity         = "CIDADE"
	ColAccessPoint  = "AT"
	ColCTO          = "CTO"
	ColFacility     = "FAC"
	ColLat          = "LAT"
	ColLon          = "LON"
	ColGeoStatus    = "GEO_STATUS"
)

// GeoStatus tells whether a record went through geocoding and with which
// outcome. It replaces guessing from the presence of LAT/LON columns.
type GeoStatus string

const (
	Unresolved GeoStatus = ""
	Resolved   GeoStatus = "resolved"
	NotFound   GeoStatus = "not_found"
)

func parseGeoStatus(s string) GeoStatus {
	switch GeoStatus(strings.ToLower(strings.TrimSpace(s))) {
	case Resolved:
		return Resolved
	case NotFound:
		return NotFound
	default:
		return Unresolved
	}
}

// Record is one spreadsheet row.
type Record struct {
	// Row is the 1-based sheet row the record was read from.
	Row    int
	Fields map[string]string
	Lat    *float64
	Lon    *float64
	Status GeoStatus
}

// Get returns the value of column, or "" when the column is absent.
func (r Record) Get(column string) string {
	return r.Fields[column]
}

func (r Record) ID() string           { return r.Get(ColID) }
func (r Record) Address() string      { return r.Get(ColAddress) }
func (r Record) Neighborhood() string { return r.Get(ColNeighborhood) }
func (r Record) City() string         { return r.Get(ColCity) }
func (r Record) AccessPoint() string  { return r.Get(ColAccessPoint) }
func (r Record) CTO() string          { return r.Get(ColCTO) }
func (r Record) Facility() string     { return r.Get(ColFacility) }

// HasCoordinates reports whether both latitude and longitude are known.
func (r Record) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// SetCoordinates marks the record as resolved at lat, lon.
func (r *Record) SetCoordinates(lat, lon float64) {
	r.Lat = &lat
	r.Lon = &lon
	r.Status = Resolved
}

// MarkNotFound records a finished lookup without a match.
func (r *Record) MarkNotFound() {
	r.Lat = nil
	r.Lon = nil
	r.Status = NotFound
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// parseCoord accepts both "." and "," as decimal separator.
func parseCoord(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
