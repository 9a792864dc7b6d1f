package model

import (
	"time"

	"github.com/goccy/go-json"
)

// AccessTimeFormat is the on-disk and display format of access timestamps.
const AccessTimeFormat = "2006-01-02 15:04:05"

// AccessEvent records one successful authentication. Rows are only ever
// inserted.
type AccessEvent struct {
	Id        int       `json:"-" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"index;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index;not null"`
}

// FormattedTime returns the timestamp with second resolution.
func (e AccessEvent) FormattedTime() string {
	return e.Timestamp.Format(AccessTimeFormat)
}

func (e AccessEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Username  string `json:"username"`
		Timestamp string `json:"timestamp"`
	}{e.Username, e.FormattedTime()})
}

// GeocodeEntry caches the provider answer for one free-text query.
type GeocodeEntry struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Query     string    `json:"query" gorm:"uniqueIndex;not null"`
	Found     bool      `json:"found"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"index"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex"`
	Value string `json:"value" form:"value"`
}
