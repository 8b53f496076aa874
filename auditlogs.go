package pylon

import (
	"context"
	"time"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// AuditLog is one entry in the workspace audit trail. Audit logs are
// read-only.
type AuditLog struct {
	ID           string     `json:"id"`
	Action       string     `json:"action"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id,omitempty"`
	Actor        *Reference `json:"actor,omitempty"`
	CreatedAt    Timestamp  `json:"created_at"`
}

// AuditLogsService handles the /audit_logs resource.
type AuditLogsService service

type auditLogListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams audit log entries, newest first.
func (s *AuditLogsService) List(ctx context.Context) *pylonhttp.PageIterator[*AuditLog] {
	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*AuditLog, string, bool, error) {
		path, err := addOptions("/audit_logs", auditLogListParams{Limit: DefaultPageLimit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var logs []*AuditLog
		resp, err := s.client.http.Get(ctx, path, &logs)
		if err != nil {
			return nil, "", false, err
		}
		return logs, resp.Cursor, resp.HasNextPage, nil
	})
}

// AuditLogSearchOptions narrows Search. Zero fields are omitted from the
// query.
type AuditLogSearchOptions struct {
	// Action filters by action type, for example "issue.updated".
	Action string

	// ResourceType filters by the type of the affected resource.
	ResourceType string

	// ActorID filters by the user who performed the action.
	ActorID string

	// CreatedAfter bounds the window (inclusive).
	CreatedAfter time.Time

	// CreatedBefore bounds the window (exclusive).
	CreatedBefore time.Time

	// Limit is the page size. Zero means DefaultPageLimit.
	Limit int
}

type auditLogSearchParams struct {
	Action        string `url:"action,omitempty"`
	ResourceType  string `url:"resource_type,omitempty"`
	ActorID       string `url:"actor_id,omitempty"`
	CreatedAfter  string `url:"created_after,omitempty"`
	CreatedBefore string `url:"created_before,omitempty"`
	Limit         int    `url:"limit"`
	Cursor        string `url:"cursor,omitempty"`
}

// Search streams audit log entries matching the options.
func (s *AuditLogsService) Search(ctx context.Context, opts *AuditLogSearchOptions) *pylonhttp.PageIterator[*AuditLog] {
	if opts == nil {
		opts = &AuditLogSearchOptions{}
	}

	params := auditLogSearchParams{
		Action:       opts.Action,
		ResourceType: opts.ResourceType,
		ActorID:      opts.ActorID,
		Limit:        opts.Limit,
	}
	if params.Limit <= 0 {
		params.Limit = DefaultPageLimit
	}
	if !opts.CreatedAfter.IsZero() {
		params.CreatedAfter = FormatTime(opts.CreatedAfter)
	}
	if !opts.CreatedBefore.IsZero() {
		params.CreatedBefore = FormatTime(opts.CreatedBefore)
	}

	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*AuditLog, string, bool, error) {
		params.Cursor = cursor
		path, err := addOptions("/audit_logs/search", params)
		if err != nil {
			return nil, "", false, err
		}

		var logs []*AuditLog
		resp, err := s.client.http.Get(ctx, path, &logs)
		if err != nil {
			return nil, "", false, err
		}
		return logs, resp.Cursor, resp.HasNextPage, nil
	})
}
