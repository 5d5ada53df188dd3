// Package notify fans out change signals for documents. A signal carries
// only the topic; subscribers re-read the document they watch.
package notify

import "context"

type Notifier interface {
	// Publish signals every subscriber of topic.
	Publish(ctx context.Context, topic string) error
	// Subscribe returns a channel that receives a value after each publish
	// on topic. Signals published while the subscriber is busy coalesce.
	// The channel is closed once ctx is done.
	Subscribe(ctx context.Context, topic string) (<-chan struct{}, error)
	Close() error
}

// DreamTopic names the topic of one dream document.
func DreamTopic(ownerID, docID string) string {
	return "dream:" + ownerID + "/" + docID
}

// UserTopic names the topic of one profile document.
func UserTopic(userID string) string {
	return "user:" + userID
}
