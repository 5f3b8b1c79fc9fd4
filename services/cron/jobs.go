package cron

import (
	"fmt"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
)

// CleanupExpiredResetTokens removes password reset tokens past their expiry
func (m *CronManager) CleanupExpiredResetTokens() {
	logID := m.logJobStart("cleanup_expired_reset_tokens")

	result := m.db.
		Where("expires_at < ?", time.Now()).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		m.logJobError(logID, fmt.Errorf("failed to delete reset tokens: %w", result.Error))
		return
	}

	m.logJobComplete(logID, fmt.Sprintf("Removed %d expired reset tokens", result.RowsAffected))
}

// CleanupExpiredBlacklistEntries prunes blacklist rows for tokens that
// have already expired on their own.
func (m *CronManager) CleanupExpiredBlacklistEntries() {
	logID := m.logJobStart("cleanup_expired_blacklist")

	result := m.db.
		Where("expires_at < ?", time.Now()).
		Unscoped().
		Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		m.logJobError(logID, fmt.Errorf("failed to prune blacklist: %w", result.Error))
		return
	}

	m.logJobComplete(logID, fmt.Sprintf("Pruned %d blacklist entries", result.RowsAffected))
}

// CleanupOldJobLogs trims cron log rows older than 30 days
func (m *CronManager) CleanupOldJobLogs() {
	logID := m.logJobStart("cleanup_old_job_logs")

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.
		Where("started_at < ?", cutoff).
		Unscoped().
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(logID, fmt.Errorf("failed to trim job logs: %w", result.Error))
		return
	}

	m.logJobComplete(logID, fmt.Sprintf("Trimmed %d old job logs", result.RowsAffected))
}
