package geocode

import (
	"github.com/ctopbusca/ctop-busca/address"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// MapPoint is one marker on the result map.
type MapPoint struct {
	ID      string  `json:"id"`
	Address string  `json:"address"`
	CTO     string  `json:"cto"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Geohash string  `json:"geohash"`
}

// Bounds is the smallest lat/lon rectangle holding all points.
type Bounds struct {
	SouthWest Point `json:"southWest"`
	NorthEast Point `json:"northEast"`
}

// MapView is what the map needs to render a result set.
type MapView struct {
	Points []MapPoint `json:"points"`
	Center *Point     `json:"center,omitempty"`
	Bounds *Bounds    `json:"bounds,omitempty"`
}

// MapPoints keeps only records with coordinates.
func MapPoints(records []address.Record) MapView {
	view := MapView{Points: make([]MapPoint, 0, len(records))}
	rect := s2.EmptyRect()
	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		lat, lon := *rec.Lat, *rec.Lon
		view.Points = append(view.Points, MapPoint{
			ID:      rec.ID(),
			Address: rec.Address(),
			CTO:     rec.CTO(),
			Lat:     lat,
			Lon:     lon,
			Geohash: geohash.Encode(lat, lon),
		})
		rect = rect.AddPoint(s2.LatLngFromDegrees(lat, lon))
	}
	if rect.IsEmpty() {
		return view
	}
	center := rect.Center()
	lo, hi := rect.Lo(), rect.Hi()
	view.Center = &Point{Lat: center.Lat.Degrees(), Lon: center.Lng.Degrees()}
	view.Bounds = &Bounds{
		SouthWest: Point{Lat: lo.Lat.Degrees(), Lon: lo.Lng.Degrees()},
		NorthEast: Point{Lat: hi.Lat.Degrees(), Lon: hi.Lng.Degrees()},
	}
	return view
}
