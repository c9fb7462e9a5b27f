package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-catalog/internal/config"
	"property-catalog/internal/logger"
	"property-catalog/internal/models"

	"gorm.io/gorm"
)

// ErrSafetyLimit is returned when more properties are eligible than a run may purge.
var ErrSafetyLimit = errors.New("safety check failed")

// Service physically removes soft-deleted properties once their retention
// period has passed. It is the only code path that deletes catalog rows.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{db: db, log: log.With("service", "cleanup")}
}

// PurgeConfig holds configuration for a purge run
type PurgeConfig struct {
	RetentionDays    int    // Days a soft-deleted property is kept (default: 90)
	MaxDeletionCount int    // Abort when more properties than this are eligible
	DryRun           bool   // Only report what would be purged
	Reason           string // Recorded in purge_logs
}

// DefaultPurgeConfig returns default configuration
func DefaultPurgeConfig() PurgeConfig {
	return PurgeConfig{
		RetentionDays:    90,
		MaxDeletionCount: 1000,
		DryRun:           false,
		Reason:           models.PurgeReasonRetention,
	}
}

// PurgeConfigFrom builds a purge configuration from the application config
func PurgeConfigFrom(cfg config.CleanupConfig) PurgeConfig {
	pc := DefaultPurgeConfig()
	if cfg.RetentionDays > 0 {
		pc.RetentionDays = cfg.RetentionDays
	}
	if cfg.MaxDeletionCount > 0 {
		pc.MaxDeletionCount = cfg.MaxDeletionCount
	}
	pc.DryRun = cfg.DryRun
	return pc
}

// PurgeResult holds the result of a purge run
type PurgeResult struct {
	TargetCount      int       `json:"target_count"`
	PurgedCount      int       `json:"purged_count"`
	ErrorCount       int       `json:"error_count"`
	DryRun           bool      `json:"dry_run"`
	ExecutedAt       time.Time `json:"executed_at"`
	PurgedProperties []int64   `json:"purged_properties"`
	Errors           []string  `json:"errors,omitempty"`
}

// Stats summarizes catalog and purge state
type Stats struct {
	Live              int64            `json:"live"`
	SoftDeleted       int64            `json:"soft_deleted"`
	ExpiredReady      int              `json:"expired_ready_for_purge"`
	PurgedTotal       int64            `json:"purged_total"`
	PurgedLast30Days  int64            `json:"purged_last_30_days"`
	PurgedByReason    map[string]int64 `json:"purged_by_reason"`
	RetentionDaysUsed int              `json:"retention_days"`
}

// FindExpired returns soft-deleted properties whose last change is older than retentionDays
func (s *Service) FindExpired(ctx context.Context, retentionDays int) ([]models.Property, error) {
	var properties []models.Property

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	err := s.db.WithContext(ctx).
		Where("is_deleted = ? AND updated_at < ?", true, cutoff).
		Order("updated_at ASC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired properties: %w", err)
	}

	s.log.Debug("expired properties found", "count", len(properties), "cutoff", cutoff.Format("2006-01-02"))
	return properties, nil
}

// Purge physically deletes expired soft-deleted properties, one transaction per property
func (s *Service) Purge(ctx context.Context, cfg PurgeConfig) (*PurgeResult, error) {
	if cfg.Reason == "" {
		cfg.Reason = models.PurgeReasonRetention
	}
	result := &PurgeResult{
		DryRun:           cfg.DryRun,
		ExecutedAt:       time.Now().UTC(),
		PurgedProperties: []int64{},
	}

	expired, err := s.FindExpired(ctx, cfg.RetentionDays)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(expired)

	if result.TargetCount == 0 {
		s.log.Info("no expired properties to purge")
		return result, nil
	}

	// Safety check: abort if too many properties would be deleted
	if cfg.MaxDeletionCount > 0 && result.TargetCount > cfg.MaxDeletionCount {
		return nil, fmt.Errorf("%w: %d properties exceed max deletion limit of %d",
			ErrSafetyLimit, result.TargetCount, cfg.MaxDeletionCount)
	}

	s.log.Info("starting purge", "targets", result.TargetCount, "retention_days", cfg.RetentionDays, "dry_run", cfg.DryRun)

	for _, prop := range expired {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if cfg.DryRun {
			s.log.Info("[DRY-RUN] would purge property", "id", prop.ID, "title", prop.Title)
			result.PurgedProperties = append(result.PurgedProperties, prop.ID)
			result.PurgedCount++
			continue
		}

		if err := s.purgeOne(ctx, prop, cfg.Reason); err != nil {
			msg := fmt.Sprintf("failed to purge property %d: %v", prop.ID, err)
			s.log.Error("purge failed", "id", prop.ID, "error", err)
			result.Errors = append(result.Errors, msg)
			result.ErrorCount++
			continue
		}

		s.log.Info("property purged", "id", prop.ID, "title", prop.Title)
		result.PurgedProperties = append(result.PurgedProperties, prop.ID)
		result.PurgedCount++
	}

	s.log.Info("purge completed",
		"purged", result.PurgedCount, "targets", result.TargetCount,
		"errors", result.ErrorCount, "dry_run", cfg.DryRun)

	return result, nil
}

func (s *Service) purgeOne(ctx context.Context, prop models.Property, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var imageCount int64
		if err := tx.Model(&models.PropertyImage{}).Where("property_id = ?", prop.ID).Count(&imageCount).Error; err != nil {
			return fmt.Errorf("count images: %w", err)
		}

		// 1. Record the purge
		entry := models.PurgeLog{
			PropertyID:    prop.ID,
			Title:         prop.Title,
			City:          prop.City,
			ImageCount:    int(imageCount),
			SoftDeletedAt: prop.UpdatedAt,
			PurgedAt:      time.Now().UTC().Truncate(time.Microsecond),
			Reason:        reason,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create purge log: %w", err)
		}

		// 2. Images, then the property row. Only soft-deleted rows are eligible.
		if err := tx.Where("property_id = ?", prop.ID).Delete(&models.PropertyImage{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		res := tx.Where("id = ? AND is_deleted = ?", prop.ID, true).Delete(&models.Property{})
		if res.Error != nil {
			return fmt.Errorf("delete property: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("property %d is no longer soft-deleted", prop.ID)
		}
		return nil
	})
}

// Stats returns counts of live, soft-deleted and purged properties
func (s *Service) Stats(ctx context.Context, retentionDays int) (*Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &Stats{
		PurgedByReason:    make(map[string]int64),
		RetentionDaysUsed: retentionDays,
	}

	if err := db.Model(&models.Property{}).Where("is_deleted = ?", false).Count(&stats.Live).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Property{}).Where("is_deleted = ?", true).Count(&stats.SoftDeleted).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.PurgeLog{}).Count(&stats.PurgedTotal).Error; err != nil {
		return nil, err
	}

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := db.Model(&models.PurgeLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	for _, rc := range reasonCounts {
		stats.PurgedByReason[rc.Reason] = rc.Count
	}

	thirtyDaysAgo := time.Now().UTC().AddDate(0, 0, -30)
	if err := db.Model(&models.PurgeLog{}).
		Where("purged_at >= ?", thirtyDaysAgo).
		Count(&stats.PurgedLast30Days).Error; err != nil {
		return nil, err
	}

	expired, err := s.FindExpired(ctx, retentionDays)
	if err != nil {
		return nil, err
	}
	stats.ExpiredReady = len(expired)

	return stats, nil
}

// RecentLogs returns the latest purge log entries
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]models.PurgeLog, error) {
	if limit <= 0 {
		limit = 100
	}
	logs := []models.PurgeLog{}
	err := s.db.WithContext(ctx).Order("purged_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
