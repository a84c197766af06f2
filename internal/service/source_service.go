package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tinypost/tinypost/internal/metrics"
	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

type CreateSourceParams struct {
	Name            string
	URL             string
	IncludeKeywords []string
	ExcludeKeywords []string
}

type SourceServiceConfig struct {
	MaxItems    int
	MaxBodySize int64
	UserAgent   string
}

type SourceService struct {
	config     SourceServiceConfig
	queries    *repository.Queries
	httpClient *http.Client
	policy     *bluemonday.Policy
	recorder   metrics.Recorder
	now        func() time.Time
}

func NewSourceService(config SourceServiceConfig, queries *repository.Queries, httpClient *http.Client, recorder metrics.Recorder) *SourceService {
	return &SourceService{
		config:     config,
		queries:    queries,
		httpClient: httpClient,
		policy:     bluemonday.StrictPolicy(),
		recorder:   recorder,
		now:        time.Now,
	}
}

func (ss *SourceService) Create(ctx context.Context, tenantID int64, params CreateSourceParams) (model.Source, error) {
	if err := validateSourceURL(params.URL); err != nil {
		return model.Source{}, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = params.URL
	}

	row, err := ss.queries.CreateSource(ctx, repository.CreateSourceParams{
		TenantID:        tenantID,
		Name:            name,
		Url:             params.URL,
		IncludeKeywords: strings.Join(utils.NormalizeList(params.IncludeKeywords), ","),
		ExcludeKeywords: strings.Join(utils.NormalizeList(params.ExcludeKeywords), ","),
		CreatedAt:       ss.now().Unix(),
	})
	if err != nil {
		return model.Source{}, fmt.Errorf("create source: %w", err)
	}

	return sourceFromRow(row), nil
}

func (ss *SourceService) Get(ctx context.Context, tenantID int64, id int64) (model.Source, error) {
	row, err := ss.queries.GetTenantSource(ctx, repository.GetTenantSourceParams{
		ID:       id,
		TenantID: tenantID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Source{}, ErrSourceNotFound
		}
		return model.Source{}, err
	}
	return sourceFromRow(row), nil
}

func (ss *SourceService) List(ctx context.Context, tenantID int64) ([]model.Source, error) {
	rows, err := ss.queries.ListTenantSources(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sources := make([]model.Source, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, sourceFromRow(row))
	}
	return sources, nil
}

// PollAll polls every active source. A failing source does not stop the others.
func (ss *SourceService) PollAll(ctx context.Context) error {
	rows, err := ss.queries.ListActiveSources(ctx)
	if err != nil {
		return fmt.Errorf("list active sources: %w", err)
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		source := sourceFromRow(row)
		imported, err := ss.Poll(ctx, source)
		if err != nil {
			tlog.App.Warn().Err(err).Int64("source_id", source.ID).Str("url", source.URL).Msg("Failed to poll source")
			continue
		}

		tlog.App.Debug().Int64("source_id", source.ID).Int("imported", imported).Msg("Polled source")
	}

	return nil
}

// Poll fetches the source feed and stores new matching items as drafts. It
// returns the number of items imported.
func (ss *SourceService) Poll(ctx context.Context, source model.Source) (int, error) {
	feed, err := ss.fetch(ctx, source.URL)
	if err != nil {
		ss.recorder.RecordSourcePoll(metrics.OutcomeFailure)
		return 0, err
	}

	imported := 0
	now := ss.now().Unix()

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if ss.config.MaxItems > 0 && imported >= ss.config.MaxItems {
			break
		}

		title := ss.plainText(item.Title)
		body := ss.plainText(firstNonEmpty(item.Content, item.Description))

		if !MatchesKeywords(title+"\n"+body, source.IncludeKeywords, source.ExcludeKeywords) {
			continue
		}

		guid := firstNonEmpty(item.GUID, item.Link, title)
		if guid == "" {
			continue
		}

		_, err := ss.queries.CreateContentItem(ctx, repository.CreateContentItemParams{
			TenantID:  source.TenantID,
			SourceID:  sql.NullInt64{Int64: source.ID, Valid: true},
			Guid:      sql.NullString{String: guid, Valid: true},
			Title:     title,
			Body:      body,
			Link:      item.Link,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			// Conflicting rows are skipped by the insert and come back as no rows
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			ss.recorder.RecordSourcePoll(metrics.OutcomeFailure)
			return imported, fmt.Errorf("store item: %w", err)
		}

		imported++
	}

	err = ss.queries.UpdateSourcePolledAt(ctx, repository.UpdateSourcePolledAtParams{
		LastPolledAt: sql.NullInt64{Int64: now, Valid: true},
		ID:           source.ID,
	})
	if err != nil {
		return imported, fmt.Errorf("update source: %w", err)
	}

	ss.recorder.RecordSourcePoll(metrics.OutcomeSuccess)
	ss.recorder.RecordItemsImported(imported)

	return imported, nil
}

func (ss *SourceService) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	if ss.config.UserAgent != "" {
		req.Header.Set("User-Agent", ss.config.UserAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	res, err := ss.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status code: %d", res.StatusCode)
	}

	limit := ss.config.MaxBodySize
	if limit <= 0 {
		limit = 5 << 20
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	if int64(len(body)) > limit {
		return nil, fmt.Errorf("feed exceeds %d bytes", limit)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return feed, nil
}

// plainText strips markup and collapses whitespace
func (ss *SourceService) plainText(value string) string {
	return strings.Join(strings.Fields(html.UnescapeString(ss.policy.Sanitize(value))), " ")
}

// MatchesKeywords reports whether text passes the include and exclude lists.
// Matching is a case insensitive substring match.
func MatchesKeywords(text string, include []string, exclude []string) bool {
	text = strings.ToLower(text)

	for _, keyword := range exclude {
		if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for _, keyword := range include {
		if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

func validateSourceURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid source url: scheme must be http or https")
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("invalid source url: missing host")
	}
	return nil
}

func sourceFromRow(row repository.Source) model.Source {
	return model.Source{
		ID:              row.ID,
		TenantID:        row.TenantID,
		Name:            row.Name,
		URL:             row.Url,
		IncludeKeywords: utils.SplitList(row.IncludeKeywords),
		ExcludeKeywords: utils.SplitList(row.ExcludeKeywords),
		IsActive:        row.IsActive,
		LastPolledAt:    timeFromNull(row.LastPolledAt),
	}
}
