package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctopbusca/ctop-busca/database/model"
	"github.com/ctopbusca/ctop-busca/database/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAccessLog struct{}

func (failingAccessLog) Append(model.AccessEvent) error      { return errors.New("disk full") }
func (failingAccessLog) List() ([]model.AccessEvent, error) { return nil, nil }

func newAccessLog(t *testing.T) *AccessLogService {
	t.Helper()
	return NewAccessLogService(repository.NewCSVAccessLogRepository(filepath.Join(t.TempDir(), "log_acessos.csv")))
}

func TestAccessLog_RecordAndList(t *testing.T) {
	s := newAccessLog(t)
	clock := time.Date(2024, 3, 1, 9, 30, 15, 500, time.Local)
	s.now = func() time.Time { return clock }

	s.Record("maria")
	clock = clock.Add(time.Hour)
	s.Record("Jonathan")

	events, err := s.List()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "maria", events[0].Username)
	assert.Equal(t, "2024-03-01 09:30:15", events[0].FormattedTime())
	assert.Equal(t, "Jonathan", events[1].Username)

	recent, err := s.Recent()
	require.NoError(t, err)
	assert.Equal(t, "Jonathan", recent[0].Username)
	assert.Equal(t, "maria", recent[1].Username)
}

func TestAccessLog_EmptyBeforeFirstLogin(t *testing.T) {
	events, err := newAccessLog(t).List()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAccessLog_WriteFailureIsSwallowed(t *testing.T) {
	s := NewAccessLogService(failingAccessLog{})
	assert.NotPanics(t, func() { s.Record("maria") })
}
