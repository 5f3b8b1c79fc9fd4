// Package cron schedules the housekeeping jobs: expired token
// cleanup and blacklist pruning.
package cron

import (
	"log"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	return &CronManager{
		cron: cron.New(cron.WithSeconds()),
		db:   db,
	}
}

// Start registers all jobs and starts the scheduler
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every hour: remove expired password reset tokens
	_, err := m.cron.AddFunc("0 0 * * * *", m.CleanupExpiredResetTokens)
	if err != nil {
		return err
	}

	// Every hour at :30: prune expired blacklist entries
	_, err = m.cron.AddFunc("0 30 * * * *", m.CleanupExpiredBlacklistEntries)
	if err != nil {
		return err
	}

	// Daily at 3 AM: trim old cron logs
	_, err = m.cron.AddFunc("0 0 3 * * *", m.CleanupOldJobLogs)
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart records a job starting and returns its log row id
func (m *CronManager) logJobStart(jobName string) uint {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "started",
		StartedAt: time.Now(),
	}
	m.db.Create(&cronLog)
	return cronLog.ID
}

// logJobComplete marks a job row completed with a summary message
func (m *CronManager) logJobComplete(logID uint, message string) {
	now := time.Now()
	var cronLog model.CronJobLog
	if err := m.db.First(&cronLog, logID).Error; err != nil {
		return
	}

	log.Printf("[CRON] Completed job: %s - %s", cronLog.JobName, message)
	m.db.Model(&cronLog).Updates(map[string]interface{}{
		"status":       "completed",
		"completed_at": now,
		"duration":     int(now.Sub(cronLog.StartedAt).Milliseconds()),
		"message":      message,
	})
}

// logJobError marks a job row failed
func (m *CronManager) logJobError(logID uint, err error) {
	now := time.Now()
	var cronLog model.CronJobLog
	if dbErr := m.db.First(&cronLog, logID).Error; dbErr != nil {
		return
	}

	log.Printf("[CRON] Job failed: %s - %v", cronLog.JobName, err)
	m.db.Model(&cronLog).Updates(map[string]interface{}{
		"status":       "failed",
		"completed_at": now,
		"duration":     int(now.Sub(cronLog.StartedAt).Milliseconds()),
		"error_msg":    err.Error(),
	})
}
