package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garnizeh/campus/pkg/models"
)

// TypeNotifyUser is the job type carrying a Notification payload.
const TypeNotifyUser = "notify.user"

// Notification kinds.
const (
	KindMentorshipRequest = "mentorship_request"
	KindProjectJoined     = "project_joined"
)

// Notification is a message for one user about a target entity.
type Notification struct {
	UserID     int64             `json:"userId"`
	Kind       string            `json:"kind"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	TargetType models.TargetType `json:"targetType"`
	TargetID   int64             `json:"targetId"`
}

func (n Notification) validate() error {
	if n.UserID <= 0 {
		return errors.New("notification has no recipient")
	}
	if n.Kind == "" {
		return errors.New("notification has no kind")
	}
	return nil
}

// Deliverer hands a notification to its final channel.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// LogDeliverer writes notifications as structured log lines.
type LogDeliverer struct {
	Logger *slog.Logger
}

func (d LogDeliverer) Deliver(ctx context.Context, n Notification) error {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "notification delivered",
		slog.Int64("user_id", n.UserID),
		slog.String("kind", n.Kind),
		slog.String("title", n.Title),
		slog.String("target_type", string(n.TargetType)),
		slog.Int64("target_id", n.TargetID),
	)
	return nil
}

// NotifyHandler decodes a notify.user job and passes it to d. A payload that
// cannot be decoded fails every attempt and ends in the dead letter table.
func NotifyHandler(d Deliverer) Handler {
	return func(ctx context.Context, j *Job) error {
		var n Notification
		if err := json.Unmarshal(j.Payload, &n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		if err := n.validate(); err != nil {
			return err
		}
		return d.Deliver(ctx, n)
	}
}

// Notifier sends a notification, now or later.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// QueueNotifier persists notifications as jobs for the worker pool.
type QueueNotifier struct {
	repo *Repository
}

func NewQueueNotifier(repo *Repository) *QueueNotifier {
	return &QueueNotifier{repo: repo}
}

func (q *QueueNotifier) Notify(ctx context.Context, n Notification) error {
	if err := n.validate(); err != nil {
		return err
	}
	_, err := enqueue(ctx, q.repo, TypeNotifyUser, n, DefaultPriority, DefaultMaxAttempts)
	return err
}

// DirectNotifier delivers synchronously; used when there is no job table.
type DirectNotifier struct {
	Deliverer Deliverer
}

func (d DirectNotifier) Notify(ctx context.Context, n Notification) error {
	if err := n.validate(); err != nil {
		return err
	}
	return d.Deliverer.Deliver(ctx, n)
}
