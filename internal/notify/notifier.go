package notify

import (
	"context"
	"errors"
)

// Message kinds, recorded with every delivery.
const (
	KindDigest   = "digest"
	KindGreeting = "greeting"
	KindManual   = "manual"
)

// ErrEmptyText is returned for notifications with no text.
var ErrEmptyText = errors.New("notification text is empty")

// Notification represents a notification message. The destination is fixed
// by the Notifier.
type Notification struct {
	Kind string
	Text string
}

// Notifier is the interface for sending notifications.
type Notifier interface {
	// Send sends a notification.
	Send(ctx context.Context, notification Notification) error
}
