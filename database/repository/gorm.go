package repository

import (
	"fmt"
	"time"

	"github.com/ctopbusca/ctop-busca/database/model"
	"github.com/ctopbusca/ctop-busca/geocode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository keeps users in the users table.
type GormUserRepository struct {
	DB *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{DB: db}
}

func (r *GormUserRepository) Exists() (bool, error) {
	var count int64
	if err := r.DB.Model(&model.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Load reports an empty table as unavailable: the store is only considered
// initialized once it holds the admin account.
func (r *GormUserRepository) Load() ([]model.User, error) {
	var users []model.User
	if err := r.DB.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: users table is empty", ErrStoreUnavailable)
	}
	return users, nil
}

// Save applies the difference between the stored users and users inside one
// transaction.
func (r *GormUserRepository) Save(users []model.User) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var stored []model.User
		if err := tx.Find(&stored).Error; err != nil {
			return err
		}
		current := make(map[string]model.User, len(stored))
		for _, u := range stored {
			current[u.Username] = u
		}

		keep := make(map[string]bool, len(users))
		for _, u := range users {
			keep[u.Username] = true
			old, ok := current[u.Username]
			switch {
			case !ok:
				if err := tx.Create(&model.User{Username: u.Username, PasswordHash: u.PasswordHash}).Error; err != nil {
					return err
				}
			case old.PasswordHash != u.PasswordHash:
				if err := tx.Model(&model.User{}).
					Where("id = ?", old.Id).
					Update("password_hash", u.PasswordHash).Error; err != nil {
					return err
				}
			}
		}

		for name, u := range current {
			if keep[name] {
				continue
			}
			if err := tx.Delete(&model.User{}, u.Id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormAccessLogRepository keeps access events in the access_events table.
type GormAccessLogRepository struct {
	DB *gorm.DB
}

func NewGormAccessLogRepository(db *gorm.DB) *GormAccessLogRepository {
	return &GormAccessLogRepository{DB: db}
}

func (r *GormAccessLogRepository) Append(event model.AccessEvent) error {
	event.Id = 0
	return r.DB.Create(&event).Error
}

func (r *GormAccessLogRepository) List() ([]model.AccessEvent, error) {
	var events []model.AccessEvent
	if err := r.DB.Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Timestamp = events[i].Timestamp.In(time.Local)
	}
	return events, nil
}

// GormGeocodeCache persists provider answers per query. "No match" answers
// expire after NegativeTTL so the query is tried again later.
type GormGeocodeCache struct {
	DB          *gorm.DB
	NegativeTTL time.Duration
}

func NewGormGeocodeCache(db *gorm.DB, negativeTTL time.Duration) *GormGeocodeCache {
	return &GormGeocodeCache{DB: db, NegativeTTL: negativeTTL}
}

func (c *GormGeocodeCache) Get(query string) (geocode.Answer, bool, error) {
	var entry model.GeocodeEntry
	err := c.DB.Where("query = ?", query).Limit(1).Find(&entry).Error
	if err != nil {
		return geocode.Answer{}, false, err
	}
	if entry.Id == 0 {
		return geocode.Answer{}, false, nil
	}
	if !entry.Found && c.NegativeTTL > 0 && time.Since(entry.UpdatedAt) > c.NegativeTTL {
		return geocode.Answer{}, false, nil
	}
	return geocode.Answer{
		Found: entry.Found,
		Point: geocode.Point{Lat: entry.Lat, Lon: entry.Lon},
	}, true, nil
}

func (c *GormGeocodeCache) Put(query string, answer geocode.Answer) error {
	entry := model.GeocodeEntry{
		Query:     query,
		Found:     answer.Found,
		Lat:       answer.Point.Lat,
		Lon:       answer.Point.Lon,
		UpdatedAt: time.Now(),
	}
	return c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{"found", "lat", "lon", "updated_at"}),
	}).Create(&entry).Error
}

// PruneNegative deletes "no match" answers last refreshed before cutoff.
func (c *GormGeocodeCache) PruneNegative(cutoff time.Time) (int64, error) {
	res := c.DB.Where("found = ? AND updated_at < ?", false, cutoff).Delete(&model.GeocodeEntry{})
	return res.RowsAffected, res.Error
}
