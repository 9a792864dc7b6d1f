package job

import (
	"time"

	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/util/common"
)

// NegativeAnswerPruner is implemented by persistent geocode caches.
type NegativeAnswerPruner interface {
	PruneNegative(cutoff time.Time) (int64, error)
}

// PruneGeocodeCacheJob removes "no match" geocode answers older than ttl so
// the cache does not grow with queries that will be retried anyway.
type PruneGeocodeCacheJob struct {
	cache NegativeAnswerPruner
	ttl   time.Duration
	now   func() time.Time
}

func NewPruneGeocodeCacheJob(cache NegativeAnswerPruner, ttl time.Duration) *PruneGeocodeCacheJob {
	return &PruneGeocodeCacheJob{cache: cache, ttl: ttl, now: time.Now}
}

// Run is called by cron.
func (j *PruneGeocodeCacheJob) Run() {
	defer common.Recover("prune geocode cache job")

	n, err := j.cache.PruneNegative(j.now().Add(-j.ttl))
	if err != nil {
		logger.Warning("prune geocode cache job err:", err)
		return
	}
	if n > 0 {
		logger.Infof("pruned %d expired geocode answers", n)
	}
}
