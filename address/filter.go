package address

import (
	"errors"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the wildcard value of the optional filters.
const All = "All"

var ErrCityRequired = errors.New("city is required")

// Domain returns the distinct non-empty values of column in records, sorted
// for display.
func Domain(records []Record, column string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, r := range records {
		v := r.Get(column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	collate.New(language.BrazilianPortuguese, collate.Numeric).SortStrings(values)
	return values
}

// Apply keeps the records whose column equals value exactly. The wildcard
// returns records unchanged.
func Apply(records []Record, column, value string) []Record {
	if value == All {
		return records
	}
	out := make([]Record, 0)
	for _, r := range records {
		if r.Get(column) == value {
			out = append(out, r)
		}
	}
	return out
}

// FilterState is the ordered set of constraints of one search. Empty
// optional values mean All.
type FilterState struct {
	City        string `json:"city" form:"city"`
	AccessPoint string `json:"at" form:"at"`
	Facility    string `json:"fac" form:"fac"`
}

func (s FilterState) normalized() FilterState {
	if s.AccessPoint == "" {
		s.AccessPoint = All
	}
	if s.Facility == "" {
		s.Facility = All
	}
	return s
}

// Result is the outcome of a cascading search. Each domain is taken from
// the records left by the filters before it.
type Result struct {
	Filter       FilterState `json:"filter"`
	Records      []Record    `json:"-"`
	Cities       []string    `json:"cities"`
	AccessPoints []string    `json:"accessPoints"`
	Facilities   []string    `json:"facilities"`
}

// Cascade applies City, then AccessPoint, then Facility. An optional filter
// is skipped when its domain is empty.
func Cascade(records []Record, state FilterState) (Result, error) {
	state = state.normalized()
	res := Result{
		Filter:       state,
		Cities:       Domain(records, ColCity),
		AccessPoints: []string{},
		Facilities:   []string{},
	}
	if state.City == "" || state.City == All {
		return res, ErrCityRequired
	}

	subset := Apply(records, ColCity, state.City)

	res.AccessPoints = Domain(subset, ColAccessPoint)
	if len(res.AccessPoints) > 0 {
		subset = Apply(subset, ColAccessPoint, state.AccessPoint)
	} else {
		res.Filter.AccessPoint = All
	}

	res.Facilities = Domain(subset, ColFacility)
	if len(res.Facilities) > 0 {
		subset = Apply(subset, ColFacility, state.Facility)
	} else {
		res.Filter.Facility = All
	}

	res.Records = subset
	return res, nil
}
