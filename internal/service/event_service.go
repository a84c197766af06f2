package service

import (
	"context"
	"sync"
	"time"

	"github.com/tinypost/tinypost/internal/metrics"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"
)

type EventType string

const (
	EventIntegrationConnected    EventType = "integration.connected"
	EventIntegrationDisconnected EventType = "integration.disconnected"
	EventContentPublished        EventType = "content.published"
	EventContentPublishFailed    EventType = "content.publish_failed"
)

type Event struct {
	Type           EventType
	TenantID       int64
	IntegrationID  int64
	Platform       string
	PlatformUserID string
	ContentID      int64
	PlatformPostID string
	Payload        []byte
	Err            error
	OccurredAt     time.Time
}

type EventListener interface {
	HandleEvent(ctx context.Context, event Event)
}

type EventListenerFunc func(ctx context.Context, event Event)

func (f EventListenerFunc) HandleEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// EventBroker fans events out to its listeners synchronously, in subscription
// order. A nil broker drops every event.
type EventBroker struct {
	mu        sync.RWMutex
	listeners []EventListener
}

func NewEventBroker() *EventBroker {
	return &EventBroker{}
}

func (b *EventBroker) Subscribe(listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

func (b *EventBroker) Publish(ctx context.Context, event Event) {
	if b == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	b.mu.RLock()
	listeners := make([]EventListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, listener := range listeners {
		listener.HandleEvent(ctx, event)
	}
}

// AuditListener writes every event to the audit stream
type AuditListener struct{}

func (AuditListener) HandleEvent(_ context.Context, event Event) {
	switch event.Type {
	case EventIntegrationConnected:
		tlog.AuditIntegrationConnected(event.TenantID, event.IntegrationID, event.Platform, event.PlatformUserID)
	case EventIntegrationDisconnected:
		tlog.AuditIntegrationDisconnected(event.TenantID, event.IntegrationID, event.Platform)
	case EventContentPublished:
		tlog.AuditContentPublished(event.TenantID, event.IntegrationID, event.ContentID, event.PlatformPostID)
	case EventContentPublishFailed:
		tlog.AuditContentPublishFailed(event.TenantID, event.IntegrationID, event.ContentID, event.Err)
	}
}

type MetricsListener struct {
	recorder metrics.Recorder
}

func NewMetricsListener(recorder metrics.Recorder) *MetricsListener {
	return &MetricsListener{recorder: recorder}
}

func (l *MetricsListener) HandleEvent(_ context.Context, event Event) {
	switch event.Type {
	case EventIntegrationConnected:
		l.recorder.RecordIntegrationConnected(event.Platform)
	case EventIntegrationDisconnected:
		l.recorder.RecordIntegrationDisconnected(event.Platform)
	case EventContentPublished:
		l.recorder.RecordPublish(event.Platform, metrics.OutcomeSuccess)
	case EventContentPublishFailed:
		l.recorder.RecordPublish(event.Platform, metrics.OutcomeFailure)
	}
}

// ContentStatusListener keeps the content item status in line with publish events
type ContentStatusListener struct {
	queries *repository.Queries
}

func NewContentStatusListener(queries *repository.Queries) *ContentStatusListener {
	return &ContentStatusListener{queries: queries}
}

func (l *ContentStatusListener) HandleEvent(ctx context.Context, event Event) {
	if event.ContentID == 0 {
		return
	}

	var err error

	switch event.Type {
	case EventContentPublished:
		err = l.queries.MarkContentPublished(ctx, repository.MarkContentPublishedParams{
			PlatformPostID: event.PlatformPostID,
			PublishedAt:    nullUnix(&event.OccurredAt),
			UpdatedAt:      event.OccurredAt.Unix(),
			ID:             event.ContentID,
		})
	case EventContentPublishFailed:
		message := "unknown error"
		if event.Err != nil {
			message = event.Err.Error()
		}
		err = l.queries.MarkContentFailed(ctx, repository.MarkContentFailedParams{
			LastError: utils.Truncate(message, 500, "..."),
			UpdatedAt: event.OccurredAt.Unix(),
			ID:        event.ContentID,
		})
	default:
		return
	}

	if err != nil {
		tlog.App.Error().Err(err).Int64("content_id", event.ContentID).Msg("Failed to update content status")
	}
}
