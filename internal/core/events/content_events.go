package events

import (
	"fmt"
	"time"
)

const (
	ContentSaved     = "content.saved"
	ContentDeleted   = "content.deleted"
	FeedbackReceived = "feedback.received"
)

// NewContentSaved is published after a create or update lands in storage.
func NewContentSaved(collection string, recordID int64, created bool) BaseEvent {
	return BaseEvent{
		ID:        fmt.Sprintf("%s-%d-%d", collection, recordID, time.Now().UnixNano()),
		Type:      ContentSaved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"collection": collection,
			"record_id":  recordID,
			"created":    created,
		},
	}
}

// NewContentDeleted is published after a confirmed delete lands in storage.
func NewContentDeleted(collection string, recordID int64) BaseEvent {
	return BaseEvent{
		ID:        fmt.Sprintf("%s-%d-%d", collection, recordID, time.Now().UnixNano()),
		Type:      ContentDeleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"collection": collection,
			"record_id":  recordID,
		},
	}
}

// NewFeedbackReceived is published when the public feedback form submits.
func NewFeedbackReceived(recordID int64) BaseEvent {
	return BaseEvent{
		ID:        fmt.Sprintf("feedback-%d-%d", recordID, time.Now().UnixNano()),
		Type:      FeedbackReceived,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"record_id": recordID,
		},
	}
}
