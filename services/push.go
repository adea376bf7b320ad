package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"projectdesk/model"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
)

// Pusher delivers a stored notification somewhere outside the database.
type Pusher interface {
	Name() string
	Push(ctx context.Context, n *model.Notification) error
}

// ReadMarker is implemented by pushers that mirror read state.
type ReadMarker interface {
	MarkRead(ctx context.Context, userID uint, ids []uint, at time.Time) error
}

// UserTopic is the FCM topic a user's devices subscribe to.
func UserTopic(userID uint) string {
	return "user-" + strconv.FormatUint(uint64(userID), 10)
}

// FCMPusher sends each notification to the recipient's topic.
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Name() string { return "fcm" }

func (p *FCMPusher) Push(ctx context.Context, n *model.Notification) error {
	msg := &messaging.Message{
		Topic: UserTopic(n.NotifiableID),
		Notification: &messaging.Notification{
			Title: notificationTitle(n.Type),
			Body:  n.Message,
		},
		Data: pushData(n),
	}
	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// FirestoreMirror keeps a copy of each notification at
// Notifications/<userId>/Items/<id> for clients listening on Firestore.
type FirestoreMirror struct {
	client *firestore.Client
}

func NewFirestoreMirror(client *firestore.Client) *FirestoreMirror {
	return &FirestoreMirror{client: client}
}

func (m *FirestoreMirror) Name() string { return "firestore" }

func (m *FirestoreMirror) doc(userID, id uint) *firestore.DocumentRef {
	path := fmt.Sprintf("Notifications/%d/Items/%d", userID, id)
	return m.client.Doc(path)
}

func (m *FirestoreMirror) Push(ctx context.Context, n *model.Notification) error {
	data := map[string]interface{}{
		"id":         n.ID,
		"message":    n.Message,
		"type":       n.Type,
		"data":       map[string]interface{}(n.Data),
		"read_at":    n.ReadAt,
		"created_at": n.CreatedAt,
	}
	if _, err := m.doc(n.NotifiableID, n.ID).Set(ctx, data); err != nil {
		return fmt.Errorf("firestore mirror: %w", err)
	}
	return nil
}

func (m *FirestoreMirror) MarkRead(ctx context.Context, userID uint, ids []uint, at time.Time) error {
	bw := m.client.BulkWriter(ctx)
	for _, id := range ids {
		if _, err := bw.Set(m.doc(userID, id), map[string]interface{}{"read_at": at}, firestore.MergeAll); err != nil {
			bw.End()
			return err
		}
	}
	bw.End()
	return nil
}

func notificationTitle(typ string) string {
	switch typ {
	case model.NotificationTaskCompleted:
		return "Task completed"
	case model.NotificationNewComment:
		return "New comment"
	case model.NotificationTaskAssigned:
		return "Task assigned"
	}
	return "Notification"
}

// pushData flattens the notification payload to the string map FCM accepts.
func pushData(n *model.Notification) map[string]string {
	out := map[string]string{
		"notification_id": strconv.FormatUint(uint64(n.ID), 10),
		"type":            n.Type,
	}
	for k, v := range n.Data {
		out[k] = fmt.Sprint(v)
	}
	return out
}
