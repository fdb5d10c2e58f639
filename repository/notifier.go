package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/streakmate/streakmate/metrics"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/utils"
)

// GormNotifier stores notifications as rows. It always uses the root database
// handle, never a transaction, so a failed insert can only lose a
// notification and never rolls back the mutation that triggered it.
type GormNotifier struct {
	db *gorm.DB
}

// NewGormNotifier wraps the root gorm handle.
func NewGormNotifier(db *gorm.DB) *GormNotifier {
	return &GormNotifier{db: db}
}

// Notify persists a notification row. Failures are logged and swallowed.
func (n *GormNotifier) Notify(ctx context.Context, userID uint, kind, message string, data map[string]any) {
	payload := ""
	if len(data) > 0 {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	note := models.Notification{
		UserID:  userID,
		Kind:    kind,
		Message: message,
		Data:    payload,
	}
	if err := n.db.WithContext(ctx).Create(&note).Error; err != nil {
		utils.Sugar.Warnf("notification delivery failed user=%d kind=%s err=%v", userID, kind, err)
		return
	}
	metrics.NotificationsSent.Inc()
}
