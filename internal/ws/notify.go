package ws

import (
	"encoding/json"
	"time"

	"hireflow/internal/usecase/batch"

	"github.com/google/uuid"
)

const EventBatchProgress = "batch_progress"

type BatchEvent struct {
	Type      string         `json:"type"`
	Progress  batch.Progress `json:"progress"`
	Timestamp string         `json:"timestamp"`
}

// NotifyBatch pushes a progress snapshot to the batch owner's connections.
func (h *Hub) NotifyBatch(userID uuid.UUID, p batch.Progress) {
	if h == nil {
		return
	}
	b, err := json.Marshal(BatchEvent{
		Type:      EventBatchProgress,
		Progress:  p,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Printf("ws_notify user_id=%s status=marshal_error err=%v", userID, err)
		return
	}
	h.SendToUser(userID, b)
}
