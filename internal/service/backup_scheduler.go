// Package service holds long-running background workers
package service

import (
	"context"
	"fmt"

	"firemail/mail-api/internal/backup"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BackupScheduler takes periodic system snapshots on a cron schedule.
// Scheduled runs cover system metadata only; user snapshots stay on
// demand because they can be large and are owned by their tenant.
type BackupScheduler struct {
	Snapshots *backup.Builder

	cron *cron.Cron
}

func NewBackupScheduler(b *backup.Builder) *BackupScheduler {
	return &BackupScheduler{
		Snapshots: b,
		cron:      cron.New(),
	}
}

// Start registers the schedule from backup.schedule and launches the
// runner. An empty schedule disables periodic snapshots entirely.
func (s *BackupScheduler) Start() error {
	spec := viper.GetString("backup.schedule")
	if spec == "" {
		return nil
	}

	_, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q, %w", spec, err)
	}

	s.cron.Start()
	zap.L().Info("Backup scheduler started", zap.String("schedule", spec))

	return nil
}

func (s *BackupScheduler) run() {
	rec, err := s.Snapshots.BuildSystemSnapshot(context.Background())
	if err != nil {
		zap.L().Error("Scheduled system snapshot failed", zap.Error(err))
		return
	}

	zap.L().Info("Scheduled system snapshot written",
		zap.String("id", rec.ID),
		zap.Int("items", rec.Items),
		zap.Int64("size", rec.Size))
}

// Stop halts the runner, waiting for an in-flight snapshot to finish
func (s *BackupScheduler) Stop() {
	<-s.cron.Stop().Done()
}
