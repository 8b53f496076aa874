package pylon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/randalmurphal/pylon-go/filter"
	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// DefaultPageLimit is the page size used when a caller does not set one.
const DefaultPageLimit = 100

// DefaultListWindow is how far back List looks when no start time is given.
const DefaultListWindow = 30 * 24 * time.Hour

// Issue states.
const (
	IssueStateNew               = "new"
	IssueStateOpen              = "open"
	IssueStateWaitingOnCustomer = "waiting_on_customer"
	IssueStateOnHold            = "on_hold"
	IssueStateResolved          = "resolved"
	IssueStateClosed            = "closed"
)

// SlackIssueInfo holds Slack metadata for issues created from Slack.
type SlackIssueInfo struct {
	MessageTS   string `json:"message_ts"`
	ChannelID   string `json:"channel_id"`
	WorkspaceID string `json:"workspace_id"`
}

// Issue is a Pylon support issue.
type Issue struct {
	ID                    string          `json:"id"`
	Number                int             `json:"number"`
	Title                 string          `json:"title"`
	Link                  string          `json:"link"`
	BodyHTML              string          `json:"body_html"`
	State                 string          `json:"state"`
	Account               *Reference      `json:"account,omitempty"`
	Assignee              *Reference      `json:"assignee,omitempty"`
	Requester             *Reference      `json:"requester,omitempty"`
	Team                  *Reference      `json:"team,omitempty"`
	Tags                  []string        `json:"tags,omitempty"`
	CustomFields          CustomFields    `json:"custom_fields,omitempty"`
	FirstResponseTime     Timestamp       `json:"first_response_time"`
	ResolutionTime        Timestamp       `json:"resolution_time"`
	LatestMessageTime     Timestamp       `json:"latest_message_time"`
	CreatedAt             Timestamp       `json:"created_at"`
	CustomerPortalVisible bool            `json:"customer_portal_visible"`
	Source                string          `json:"source"`
	Slack                 *SlackIssueInfo `json:"slack,omitempty"`
	Type                  string          `json:"type"`
	NumberOfTouches       int             `json:"number_of_touches"`

	FirstResponseSeconds              *int `json:"first_response_seconds,omitempty"`
	BusinessHoursFirstResponseSeconds *int `json:"business_hours_first_response_seconds,omitempty"`

	svc *IssuesService
}

// ensureAttached returns the owning service for delegating helpers.
func (i *Issue) ensureAttached(op string) (*IssuesService, error) {
	if i.svc == nil {
		return nil, fmt.Errorf("issue %s: %w", op, ErrDetached)
	}
	return i.svc, nil
}

// Messages fetches the conversation on this issue.
func (i *Issue) Messages(ctx context.Context) ([]*Message, error) {
	svc, err := i.ensureAttached("messages")
	if err != nil {
		return nil, err
	}
	return svc.Messages(ctx, i.ID)
}

// Update applies a partial update and refreshes the issue in place.
func (i *Issue) Update(ctx context.Context, fields map[string]any) error {
	svc, err := i.ensureAttached("update")
	if err != nil {
		return err
	}
	updated, err := svc.Update(ctx, i.ID, fields)
	if err != nil {
		return err
	}
	*i = *updated
	return nil
}

// Refresh re-fetches the issue and replaces its fields in place.
func (i *Issue) Refresh(ctx context.Context) error {
	svc, err := i.ensureAttached("refresh")
	if err != nil {
		return err
	}
	fresh, err := svc.Get(ctx, i.ID)
	if err != nil {
		return err
	}
	*i = *fresh
	return nil
}

// Resolve moves the issue to the resolved state.
func (i *Issue) Resolve(ctx context.Context) error {
	return i.Update(ctx, map[string]any{"state": IssueStateResolved})
}

// Reopen moves the issue back to the open state.
func (i *Issue) Reopen(ctx context.Context) error {
	return i.Update(ctx, map[string]any{"state": IssueStateOpen})
}

// AssignTo assigns the issue to a user.
func (i *Issue) AssignTo(ctx context.Context, userID string) error {
	return i.Update(ctx, map[string]any{"assignee_id": userID})
}

// AssignToTeam routes the issue to a team.
func (i *Issue) AssignToTeam(ctx context.Context, teamID string) error {
	return i.Update(ctx, map[string]any{"team_id": teamID})
}

// Snooze puts the issue on hold until the given time.
func (i *Issue) Snooze(ctx context.Context, until time.Time) error {
	return i.Update(ctx, map[string]any{
		"state":              IssueStateOnHold,
		"snoozed_until_time": FormatTime(until),
	})
}

// IssuesService handles the /issues resource.
type IssuesService service

// IssueListOptions filters List by time window and page size.
type IssueListOptions struct {
	// StartTime bounds the window (inclusive). Zero means EndTime minus
	// thirty days.
	StartTime time.Time

	// EndTime bounds the window (exclusive). Zero means now.
	EndTime time.Time

	// Limit is the page size. Zero means DefaultPageLimit.
	Limit int
}

// issueListParams is the query string form of IssueListOptions.
type issueListParams struct {
	StartTime string `url:"start_time"`
	EndTime   string `url:"end_time"`
	Limit     int    `url:"limit"`
	Cursor    string `url:"cursor,omitempty"`
}

// List streams issues whose latest activity falls inside the window.
func (s *IssuesService) List(ctx context.Context, opts *IssueListOptions) *pylonhttp.PageIterator[*Issue] {
	if opts == nil {
		opts = &IssueListOptions{}
	}

	end := opts.EndTime
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := opts.StartTime
	if start.IsZero() {
		start = end.Add(-DefaultListWindow)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	params := issueListParams{
		StartTime: FormatTime(start),
		EndTime:   FormatTime(end),
		Limit:     limit,
	}

	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Issue, string, bool, error) {
		params.Cursor = cursor
		path, err := addOptions("/issues", params)
		if err != nil {
			return nil, "", false, err
		}

		var issues []*Issue
		resp, err := s.client.http.Get(ctx, path, &issues)
		if err != nil {
			return nil, "", false, err
		}
		s.attachAll(issues)
		return issues, resp.Cursor, resp.HasNextPage, nil
	})
}

// Get fetches one issue. The endpoint accepts either the opaque issue ID
// or the decimal ticket number.
func (s *IssuesService) Get(ctx context.Context, id string) (*Issue, error) {
	if id == "" {
		return nil, ErrIssueIDRequired
	}

	var issue Issue
	if _, err := s.client.http.Get(ctx, "/issues/"+url.PathEscape(id), &issue); err != nil {
		return nil, err
	}
	issue.svc = s
	return &issue, nil
}

// GetByNumber fetches an issue by its human ticket number. Returns
// (nil, nil) when no issue has that number.
func (s *IssuesService) GetByNumber(ctx context.Context, number int) (*Issue, error) {
	issue, err := s.Get(ctx, strconv.Itoa(number))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return issue, nil
}

// CreateIssueRequest is the payload for Create.
type CreateIssueRequest struct {
	Title          string             `json:"title"`
	BodyHTML       string             `json:"body_html"`
	AccountID      string             `json:"account_id,omitempty"`
	RequesterEmail string             `json:"requester_email,omitempty"`
	RequesterID    string             `json:"requester_id,omitempty"`
	AssigneeID     string             `json:"assignee_id,omitempty"`
	TeamID         string             `json:"team_id,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	CustomFields   []CustomFieldValue `json:"custom_fields,omitempty"`
}

// Create opens a new issue.
func (s *IssuesService) Create(ctx context.Context, req *CreateIssueRequest) (*Issue, error) {
	var issue Issue
	if _, err := s.client.http.Post(ctx, "/issues", req, &issue); err != nil {
		return nil, err
	}
	issue.svc = s
	return &issue, nil
}

// Update applies a partial update via PATCH. fields follows the API
// schema, for example {"state": "resolved"} or
// {"custom_fields": [{"slug": "region", "value": "emea"}]}.
func (s *IssuesService) Update(ctx context.Context, id string, fields map[string]any) (*Issue, error) {
	if id == "" {
		return nil, ErrIssueIDRequired
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	var issue Issue
	if _, err := s.client.http.Patch(ctx, "/issues/"+url.PathEscape(id), fields, &issue); err != nil {
		return nil, err
	}
	issue.svc = s
	return &issue, nil
}

// IssueSearchOptions configures Search.
type IssueSearchOptions struct {
	// Limit is the page size. Zero means DefaultPageLimit; the API caps
	// it at 1000.
	Limit int
}

// issueSearchRequest is the POST body for /issues/search. The
// continuation cursor rides in the body, not the query string.
type issueSearchRequest struct {
	Filter filter.Expr `json:"filter"`
	Limit  int         `json:"limit"`
	Cursor string      `json:"cursor,omitempty"`
}

// Search streams issues matching a filter expression.
func (s *IssuesService) Search(ctx context.Context, expr filter.Expr, opts *IssueSearchOptions) *pylonhttp.PageIterator[*Issue] {
	limit := DefaultPageLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Issue, string, bool, error) {
		if expr.IsZero() {
			return nil, "", false, ErrEmptyFilter
		}

		body := issueSearchRequest{Filter: expr, Limit: limit, Cursor: cursor}
		var issues []*Issue
		resp, err := s.client.http.Post(ctx, "/issues/search", body, &issues)
		if err != nil {
			return nil, "", false, err
		}
		s.attachAll(issues)
		return issues, resp.Cursor, resp.HasNextPage, nil
	})
}

// SearchByAccount streams issues for one account, optionally bounded on
// latest message time for incremental syncs.
func (s *IssuesService) SearchByAccount(ctx context.Context, accountID string, start, end time.Time, opts *IssueSearchOptions) *pylonhttp.PageIterator[*Issue] {
	expr := filter.Field("account_id").Eq(accountID)
	if !start.IsZero() {
		expr = expr.And(filter.Field("latest_message_time").After(start))
	}
	if !end.IsZero() {
		expr = expr.And(filter.Field("latest_message_time").Before(end))
	}
	return s.Search(ctx, expr, opts)
}

// Messages fetches the messages on an issue, in the order the API
// returns them. Messages that fail to decode are logged and skipped so
// one malformed entry cannot hide a whole conversation.
func (s *IssuesService) Messages(ctx context.Context, issueID string) ([]*Message, error) {
	if issueID == "" {
		return nil, ErrIssueIDRequired
	}

	var raw []json.RawMessage
	if _, err := s.client.http.Get(ctx, "/issues/"+url.PathEscape(issueID)+"/messages", &raw); err != nil {
		return nil, err
	}

	messages := make([]*Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal(item, &msg); err != nil {
			s.client.logger.Warn("skipping undecodable message",
				"issue_id", issueID,
				"error", err)
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

func (s *IssuesService) attachAll(issues []*Issue) {
	for _, issue := range issues {
		issue.svc = s
	}
}
