package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ctopbusca/ctop-busca/address"
	"github.com/ctopbusca/ctop-busca/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enderecos.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"ID", "Endereço", "BAIRRO", "CIDADE", "AT", "CTO", "FAC"},
		{"1", "Rua A", "Centro", "Recife", "AT1", "C1", "F1"},
		{"2", "Rua B", "Centro", "Recife", "AT2", "C2", "F2"},
		{"3", "Rua C", "Centro", "Olinda", "AT3", "C3", "F3"},
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", "A"+string(rune('1'+i)), &r))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func newSearch(t *testing.T, p geocode.Provider) (*SearchService, *address.Catalog) {
	t.Helper()
	catalog := address.NewCatalog(writeDataset(t))
	resolver := geocode.NewResolver(p, nil, geocode.Options{Interval: time.Millisecond})
	return NewSearchService(catalog, resolver), catalog
}

func TestSearchService_Search(t *testing.T) {
	s, _ := newSearch(t, nil)

	res, err := s.Search(address.FilterState{})
	assert.ErrorIs(t, err, address.ErrCityRequired)
	require.NotNil(t, res)
	assert.Equal(t, []string{"Olinda", "Recife"}, res.Cities)

	res, err = s.Search(address.FilterState{City: "Recife"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"AT1", "AT2"}, res.AccessPoints)
	assert.Equal(t, address.DisplayColumns, res.Table.Columns)
}

func TestSearchService_Export(t *testing.T) {
	s, _ := newSearch(t, nil)
	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf, address.FilterState{City: "Recife", AccessPoint: "AT2"}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Endereço,BAIRRO,CIDADE,AT,CTO,FAC", lines[0])
	assert.Equal(t, "2,Rua B,Centro,Recife,AT2,C2,F2", lines[1])
}

func TestSearchService_MapPersistsResolution(t *testing.T) {
	calls := 0
	p := geocode.ProviderFunc(func(_ context.Context, q string) (geocode.Point, bool, error) {
		calls++
		if strings.HasPrefix(q, "Rua A") {
			return geocode.Point{Lat: -8.05, Lon: -34.9}, true, nil
		}
		return geocode.Point{}, false, nil
	})
	s, catalog := newSearch(t, p)

	res, err := s.Map(context.Background(), address.FilterState{City: "Recife"})
	require.NoError(t, err)
	require.Len(t, res.Map.Points, 1)
	assert.Equal(t, "1", res.Map.Points[0].ID)
	assert.Contains(t, res.Table.Columns, address.ColLat)
	assert.Empty(t, res.Warning)
	first := calls

	ds, err := catalog.Dataset()
	require.NoError(t, err)
	assert.Equal(t, address.Resolved, ds.Records[0].Status)
	assert.Equal(t, address.NotFound, ds.Records[1].Status)
	assert.Equal(t, address.Unresolved, ds.Records[2].Status)

	res, err = s.Map(context.Background(), address.FilterState{City: "Recife"})
	require.NoError(t, err)
	assert.True(t, res.Stats.Skipped)
	assert.Equal(t, first, calls)
}

func TestSearchService_MissingDataset(t *testing.T) {
	s := NewSearchService(address.NewCatalog(filepath.Join(t.TempDir(), "none.xlsx")), nil)
	_, err := s.Search(address.FilterState{City: "Recife"})
	assert.True(t, IsDatasetMissing(err))
}
