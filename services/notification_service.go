package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/models"
)

// Redis channels for live notification feeds. Publishing is best-effort:
// the persisted row is the source of truth, the channel only wakes up
// connected clients.
const (
	UserNotificationChannel  = "notifications:user"
	AdminNotificationChannel = "notifications:admin"
)

var notificationPublisher *redis.Client

// InitNotificationPublisher connects the redis publisher used for live
// notification fan-out. A missing address disables publishing.
func InitNotificationPublisher(addr string) {
	if addr == "" {
		log.Println("REDIS_ADDR not set, live notification fan-out disabled")
		return
	}
	notificationPublisher = redis.NewClient(&redis.Options{Addr: addr})
}

// SetNotificationPublisher sets the redis publisher (primarily for testing)
func SetNotificationPublisher(client *redis.Client) {
	notificationPublisher = client
}

// NotifyUser creates a notification row for a user inside the given
// transaction. The row is published to redis only after the transaction
// commits (see PublishNotifications).
func NotifyUser(tx *gorm.DB, userID uint, ntype, title, message string, orderID *uint) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  &userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		OrderID: orderID,
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyAdmin creates a notification row on the admin feed (nil UserID)
// inside the given transaction.
func NotifyAdmin(tx *gorm.DB, ntype, title, message string, orderID *uint) (*models.Notification, error) {
	n := &models.Notification{
		Type:    ntype,
		Title:   title,
		Message: message,
		OrderID: orderID,
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// PublishNotifications pushes committed notification rows to the redis
// feeds. Must only be called after the owning transaction has committed.
// Failures are logged, never propagated: the rows are already durable.
func PublishNotifications(notifs ...*models.Notification) {
	if notificationPublisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, n := range notifs {
		if n == nil {
			continue
		}
		payload, err := json.Marshal(n)
		if err != nil {
			log.Printf("Failed to marshal notification %d: %v", n.ID, err)
			continue
		}
		channel := AdminNotificationChannel
		if n.UserID != nil {
			channel = UserNotificationChannel
		}
		if err := notificationPublisher.Publish(ctx, channel, payload).Err(); err != nil {
			log.Printf("Failed to publish notification %d: %v", n.ID, err)
		}
	}
}
