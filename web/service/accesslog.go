package service

import (
	"sort"
	"time"

	"github.com/ctopbusca/ctop-busca/database/model"
	"github.com/ctopbusca/ctop-busca/database/repository"
	"github.com/ctopbusca/ctop-busca/logger"
)

// AccessLogService records successful logins.
type AccessLogService struct {
	repo repository.AccessLogRepository
	now  func() time.Time
}

func NewAccessLogService(repo repository.AccessLogRepository) *AccessLogService {
	return &AccessLogService{repo: repo, now: time.Now}
}

// Record appends an event for username. A write failure is logged and
// otherwise ignored so that it never blocks a login.
func (s *AccessLogService) Record(username string) {
	event := model.AccessEvent{
		Username:  username,
		Timestamp: s.now().Truncate(time.Second),
	}
	if err := s.repo.Append(event); err != nil {
		logger.Warning("unable to record access of", username+":", err)
	}
}

// List returns all events in the order they were recorded.
func (s *AccessLogService) List() ([]model.AccessEvent, error) {
	return s.repo.List()
}

// Recent returns all events, newest first.
func (s *AccessLogService) Recent() ([]model.AccessEvent, error) {
	events, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events, nil
}
