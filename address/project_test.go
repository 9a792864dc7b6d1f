package address

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_AllowListAndOrder(t *testing.T) {
	header := []string{"CTO", "Extra", ColCity, ColID, ColAddress}
	records := []Record{{Fields: map[string]string{ColID: "7", ColCity: "Recife", ColAddress: "Rua A", "CTO": "C1", "Extra": "x"}}}

	table := Project(header, records)
	assert.Equal(t, []string{ColID, ColAddress, ColCity, ColCTO}, table.Columns)
	assert.Equal(t, [][]string{{"7", "Rua A", "Recife", "C1"}}, table.Rows)
}

func TestProject_AppendsCoordinatesOnceGeocoded(t *testing.T) {
	header := []string{ColID, ColCity}
	a := Record{Fields: map[string]string{ColID: "1", ColCity: "Recife"}}
	b := Record{Fields: map[string]string{ColID: "2", ColCity: "Recife"}}

	assert.Equal(t, []string{ColID, ColCity}, Project(header, []Record{a, b}).Columns)

	a.SetCoordinates(-8.05, -34.9)
	b.MarkNotFound()
	table := Project(header, []Record{a, b})
	assert.Equal(t, []string{ColID, ColCity, ColLat, ColLon}, table.Columns)
	assert.Equal(t, []string{"1", "Recife", "-8.050000", "-34.900000"}, table.Rows[0])
	assert.Equal(t, []string{"2", "Recife", "", ""}, table.Rows[1])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Table{
		Columns: []string{ColID, ColAddress},
		Rows:    [][]string{{"1", "Rua São José, 10"}},
	}))
	assert.Equal(t, "ID,Endereço\n1,\"Rua São José, 10\"\n", buf.String())
}
