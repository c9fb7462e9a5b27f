package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, cfg config.CleanupConfig) *Scheduler {
	t.Helper()
	gdb, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "sched.db"), "silent")
	require.NoError(t, err)
	require.NoError(t, gdb.InitSchema())
	t.Cleanup(func() { _ = gdb.Close() })

	log := logger.NewNop()
	return NewScheduler(cleanup.NewService(gdb.DB(), log), cfg, log)
}

func TestParseDailyRunTime(t *testing.T) {
	s := newTestScheduler(t, config.CleanupConfig{})

	cases := map[string]string{
		"02:00": "0 2 * * *",
		"23:45": "45 23 * * *",
		"7:05":  "5 7 * * *",
		"25:00": defaultCronSpec,
		"noon":  defaultCronSpec,
		"":      defaultCronSpec,
	}
	for in, want := range cases {
		assert.Equal(t, want, s.parseDailyRunTime(in), in)
	}
}

func TestStartDisabled(t *testing.T) {
	s := newTestScheduler(t, config.CleanupConfig{Enabled: false})
	require.NoError(t, s.Start())
	assert.False(t, s.isRunning)
	s.Stop()
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(t, config.CleanupConfig{Enabled: true, DailyRunTime: "04:30"})
	require.NoError(t, s.Start())
	assert.True(t, s.isRunning)
	assert.Len(t, s.cron.Entries(), 1)

	s.Stop()
	assert.False(t, s.isRunning)
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler(t, config.CleanupConfig{RetentionDays: 30})

	result, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.TargetCount)

	t.Run("overlapping runs are rejected", func(t *testing.T) {
		s.runMu.Lock()
		defer s.runMu.Unlock()

		_, err := s.RunNow(context.Background())
		assert.ErrorIs(t, err, ErrAlreadyRunning)
	})
}
