package model

import "time"

const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusFailed    = "failed"
)

type Content struct {
	ID             int64
	TenantID       int64
	SourceID       *int64
	Title          string
	Body           string
	Link           string
	Status         string
	PlatformPostID string
	LastError      string
	PublishedAt    *time.Time
	Media          []Media
}

type Media struct {
	ID                int64
	URL               string
	Kind              string
	PlatformReference string
}

type PublishResult struct {
	PlatformPostID string
	Payload        []byte
}

type Source struct {
	ID              int64
	TenantID        int64
	Name            string
	URL             string
	IncludeKeywords []string
	ExcludeKeywords []string
	IsActive        bool
	LastPolledAt    *time.Time
}
