package service

import (
	"context"
	"errors"
	"io"

	"github.com/ctopbusca/ctop-busca/address"
	"github.com/ctopbusca/ctop-busca/geocode"
	"github.com/ctopbusca/ctop-busca/logger"
)

// SearchResult is one page of the cascading search.
type SearchResult struct {
	address.Result
	Count int           `json:"count"`
	Table address.Table `json:"table"`
}

// MapResult is a search result after geocoding.
type MapResult struct {
	SearchResult
	Map     geocode.MapView   `json:"map"`
	Stats   geocode.PassStats `json:"stats"`
	Warning string            `json:"warning,omitempty"`
}

// SearchService runs searches over the address dataset and geocodes their
// results.
type SearchService struct {
	catalog  *address.Catalog
	resolver *geocode.Resolver
}

func NewSearchService(catalog *address.Catalog, resolver *geocode.Resolver) *SearchService {
	return &SearchService{catalog: catalog, resolver: resolver}
}

// Search applies the filters. With no city it returns ErrCityRequired
// together with the available cities.
func (s *SearchService) Search(state address.FilterState) (*SearchResult, error) {
	ds, err := s.catalog.Dataset()
	if err != nil {
		return nil, err
	}
	return search(ds, state)
}

func search(ds *address.Dataset, state address.FilterState) (*SearchResult, error) {
	res, err := address.Cascade(ds.Records, state)
	out := &SearchResult{Result: res, Count: len(res.Records)}
	if err != nil {
		return out, err
	}
	out.Table = address.Project(ds.Header, res.Records)
	return out, nil
}

// Export writes the projected search result as CSV.
func (s *SearchService) Export(w io.Writer, state address.FilterState) error {
	res, err := s.Search(state)
	if err != nil {
		return err
	}
	return address.WriteCSV(w, res.Table)
}

// Map geocodes the records of a search and returns their map points. Newly
// resolved rows are written back to the dataset even when ctx is cancelled
// halfway, so the next call starts where this one stopped.
func (s *SearchService) Map(ctx context.Context, state address.FilterState) (*MapResult, error) {
	ds, err := s.catalog.Dataset()
	if err != nil {
		return nil, err
	}
	found, err := search(ds, state)
	if err != nil {
		return nil, err
	}

	geo, resolveErr := s.resolver.Resolve(ctx, found.Records, found.Filter.City)
	if changed(found.Records, geo.Records) {
		if err := s.catalog.Save(geo.Records); err != nil {
			logger.Warning("saving geocoded dataset:", err)
		}
	}

	found.Records = geo.Records
	found.Table = address.Project(ds.Header, geo.Records)
	out := &MapResult{
		SearchResult: *found,
		Map:          geocode.MapPoints(geo.Records),
		Stats:        geo.Stats,
	}
	if geo.Warning != nil {
		out.Warning = geo.Warning.Error()
	}
	if resolveErr != nil {
		return out, resolveErr
	}
	return out, nil
}

func changed(before, after []address.Record) bool {
	for i := range after {
		if after[i].Status != before[i].Status {
			return true
		}
	}
	return false
}

// IsDatasetMissing reports whether err means the dataset file is absent.
func IsDatasetMissing(err error) bool {
	return errors.Is(err, address.ErrDatasetMissing)
}
