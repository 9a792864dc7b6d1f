package address

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id, city, at, fac string) Record {
	return Record{Fields: map[string]string{
		ColID:          id,
		ColAddress:     "Rua " + id,
		ColCity:        city,
		ColAccessPoint: at,
		ColFacility:    fac,
	}}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

var sample = []Record{
	rec("1", "Recife", "AT1", "F1"),
	rec("2", "Recife", "AT1", "F2"),
	rec("3", "Recife", "AT2", "F3"),
	rec("4", "Olinda", "AT9", "F9"),
	rec("5", "Águas Belas", "", ""),
	rec("6", "", "AT1", "F1"),
}

func TestDomain_SortedDistinctNonEmpty(t *testing.T) {
	got := Domain(sample, ColCity)
	want := []string{"Águas Belas", "Olinda", "Recife"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Domain() mismatch (-want +got):\n%s", diff)
	}

	numeric := []Record{rec("1", "X", "AT10", ""), rec("2", "X", "AT2", ""), rec("3", "X", "AT1", "")}
	assert.Equal(t, []string{"AT1", "AT2", "AT10"}, Domain(numeric, ColAccessPoint))
}

func TestApply(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, ids(Apply(sample, ColCity, "Recife")))
	assert.Empty(t, Apply(sample, ColCity, "recife"))
	assert.Len(t, Apply(sample, ColCity, All), len(sample))
}

func TestCascade(t *testing.T) {
	res, err := Cascade(sample, FilterState{City: "Recife"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(res.Records))
	assert.Equal(t, []string{"AT1", "AT2"}, res.AccessPoints)
	assert.Equal(t, []string{"F1", "F2", "F3"}, res.Facilities)
	assert.Equal(t, All, res.Filter.AccessPoint)
	assert.Equal(t, All, res.Filter.Facility)

	res, err = Cascade(sample, FilterState{City: "Recife", AccessPoint: "AT1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(res.Records))
	assert.Equal(t, []string{"F1", "F2"}, res.Facilities, "facility domain comes from the narrowed set")

	res, err = Cascade(sample, FilterState{City: "Recife", AccessPoint: "AT1", Facility: "F2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(res.Records))
}

func TestCascade_CityRequired(t *testing.T) {
	for _, city := range []string{"", All} {
		res, err := Cascade(sample, FilterState{City: city})
		assert.ErrorIs(t, err, ErrCityRequired)
		assert.Empty(t, res.Records)
		assert.Equal(t, []string{"Águas Belas", "Olinda", "Recife"}, res.Cities)
	}
}

func TestCascade_EmptyDomainSkipsFilter(t *testing.T) {
	res, err := Cascade(sample, FilterState{City: "Águas Belas", AccessPoint: "AT1", Facility: "F1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(res.Records))
	assert.Empty(t, res.AccessPoints)
	assert.Equal(t, All, res.Filter.AccessPoint)
	assert.Equal(t, All, res.Filter.Facility)
}

func TestCascade_UnknownValueYieldsNothing(t *testing.T) {
	res, err := Cascade(sample, FilterState{City: "Recife", AccessPoint: "AT7"})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Facilities)
}
