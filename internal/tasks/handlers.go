package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"covent/internal/config"
	"covent/internal/models"
	"covent/internal/services"
	"covent/internal/tasks/rate"
	"covent/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var (
	cfg, _ = config.Load()
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db          *gorm.DB
	logger      *logger.Logger
	taskClient  *TaskClient
	grants      *services.GrantService
	syncLimiter *rate.QueueRateLimiter
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	taskClient := NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)

	return &TaskHandler{
		db:         db,
		logger:     logger.New("task_handler"),
		taskClient: taskClient,
		grants:     services.NewGrantService(db),
		syncLimiter: rate.NewQueueRateLimiter(taskClient.GetRedisClient(), rate.QueueConfig{
			Name: TaskTypeGrantsSync,
			RateLimit: rate.RateLimit{
				Window:  time.Minute,
				MaxJobs: 60,
			},
		}),
	}
}

// HandleGrantsSync re-normalizes one event's stored co-host grants so a newly
// created code template gets its explicit deny entry persisted.
func (h *TaskHandler) HandleGrantsSync(ctx context.Context, t *asynq.Task) error {
	var payload GrantsSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid grants sync payload: %w", err)
	}

	allowed, err := h.syncLimiter.Allow(ctx, payload.BrandID)
	if err != nil {
		return err
	}
	if !allowed {
		// Retried by asynq with backoff; one sync per event is idempotent.
		return fmt.Errorf("grants sync rate limited for brand %s", payload.BrandID)
	}

	if err := h.grants.SyncEventGrants(ctx, payload.EventID); err != nil {
		return h.logger.Error("Failed to sync grants for event %s", err, payload.EventID)
	}
	return nil
}

// HandleGrantsAudit scans for brands whose owner has no founder role. The
// resolver already fails closed on these; the audit exists so operators hear
// about the integrity fault instead of discovering it through denied access.
func (h *TaskHandler) HandleGrantsAudit(ctx context.Context, t *asynq.Task) error {
	var brands []models.Brand
	err := h.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("id NOT IN (?)", h.db.Model(&models.Role{}).
			Select("brand_id").
			Where("is_founder = ? AND is_deleted = ?", true, false)).
		Find(&brands).Error
	if err != nil {
		return h.logger.Error("Grants audit query failed", err)
	}

	for _, brand := range brands {
		h.logger.Warn("Integrity fault: brand %s (%s) has no founder role", brand.ID, brand.Name)
	}

	h.logger.Info("Grants audit completed, %d brands flagged", len(brands))
	return nil
}
