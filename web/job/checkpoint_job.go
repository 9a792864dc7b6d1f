package job

import (
	"github.com/ctopbusca/ctop-busca/database"
	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/util/common"
)

// CheckpointJob folds the sqlite WAL back into the database file.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	defer common.Recover("checkpoint job")

	if database.GetDB() == nil {
		return
	}
	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
