package storage

import (
	"github.com/robfig/cron/v3"

	"umchat/pkg/dialog"
	"umchat/pkg/logger"
)

// Janitor reapplies the history window on a schedule, catching up with
// growth that happened outside the save path (shared redis keys,
// external writers).
type Janitor struct {
	store dialog.Store
	limit int
	cron  *cron.Cron
}

func NewJanitor(store dialog.Store, limit int) *Janitor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Janitor{
		store: store,
		limit: limit,
		cron:  cron.New(),
	}
}

// Start schedules pruning with a cron expression, e.g. "@every 6h".
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, j.Prune); err != nil {
		return err
	}
	j.cron.Start()
	logger.InfoCF("storage", "Retention janitor started", map[string]interface{}{
		"schedule": schedule,
	})
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Prune rewrites the stored history truncated to the window.
func (j *Janitor) Prune() {
	entries, err := j.store.LoadEntries()
	if err != nil {
		logger.WarnCF("storage", "Retention prune failed to load", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}
	if len(entries) <= j.limit {
		return
	}
	if err := j.store.SaveEntries(clampEntries(entries, j.limit)); err != nil {
		logger.WarnCF("storage", "Retention prune failed to save", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}
	logger.InfoCF("storage", "History pruned", map[string]interface{}{
		logger.FieldEntryCount: j.limit,
	})
}
