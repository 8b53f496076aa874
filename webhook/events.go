package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventType identifies a Pylon webhook event.
type EventType string

// Webhook event types.
const (
	EventIssueNew           EventType = "issue_new"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueFieldChanged  EventType = "issue_field_changed"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueTagsChanged   EventType = "issue_tags_changed"
	EventIssueReaction      EventType = "issue_reaction"
	EventIssueMessageNew    EventType = "issue_message_new"
)

// Event parsing errors.
var (
	// ErrInvalidPayload indicates the delivery body could not be decoded.
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrUnknownEvent indicates an event_type outside the known set.
	ErrUnknownEvent = errors.New("unknown webhook event type")
)

// knownEvents is the set of event types ParseEvent accepts.
var knownEvents = map[EventType]bool{
	EventIssueNew:           true,
	EventIssueAssigned:      true,
	EventIssueFieldChanged:  true,
	EventIssueStatusChanged: true,
	EventIssueTagsChanged:   true,
	EventIssueReaction:      true,
	EventIssueMessageNew:    true,
}

// customFieldPrefix prefixes the dynamic per-issue custom field keys.
const customFieldPrefix = "issue_custom_field_"

// Event is a parsed webhook delivery. Pylon flattens issue context into
// top-level keys. Snapshot events carry the full issue state; message
// events carry the message fields instead.
type Event struct {
	Type EventType `json:"event_type"`

	// Issue context, present on every event.
	IssueID             string `json:"issue_id"`
	IssueNumber         int    `json:"issue_number"`
	IssueTitle          string `json:"issue_title"`
	IssueTeamName       string `json:"issue_team_name"`
	IssueAccountID      string `json:"issue_account_id"`
	IssueAccountName    string `json:"issue_account_name"`
	IssueRequesterEmail string `json:"issue_requester_email"`
	// The requester id key is misspelled on the wire.
	IssueRequesterID         string `json:"issue_requesteer_id"`
	IssueAssigneeEmail       string `json:"issue_assignee_email"`
	IssueAssigneeID          string `json:"issue_assignee_id"`
	IssueSalesforceAccountID string `json:"issue_salesforce_account_id"`

	// Issue snapshot, on every event except issue_message_new.
	IssueBody              string   `json:"issue_body"`
	IssueStatus            string   `json:"issue_status"`
	IssueSFType            string   `json:"issue_sf_type"`
	IssueLastMessageSentAt string   `json:"issue_last_message_sent_at"`
	IssueLink              string   `json:"issue_link"`
	IssueTags              []string `json:"issue_tags"`
	IssueAccountDomains    []string `json:"issue_account_domains"`
	IssueAttachmentURLs    []string `json:"issue_attachment_urls"`

	// Message fields, on issue_message_new.
	MessageID         string   `json:"message_id"`
	MessageAuthorID   string   `json:"message_author_id"`
	MessageAuthorName string   `json:"message_author_name"`
	MessageBodyHTML   string   `json:"message_body_html"`
	MessageCCs        []string `json:"message_ccs"`
	MessageIsPrivate  bool     `json:"message_is_private"`
	MessageSentAt     string   `json:"message_sent_at"`

	// custom holds the dynamic issue_custom_field_<slug> values.
	custom map[string]string
}

// UnmarshalJSON decodes the delivery and collects the dynamic
// issue_custom_field_* keys alongside the declared fields.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	if err := json.Unmarshal(data, (*plain)(e)); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		if !strings.HasPrefix(key, customFieldPrefix) {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			// Non-string custom values keep their JSON form.
			s = string(value)
		}
		if e.custom == nil {
			e.custom = make(map[string]string)
		}
		e.custom[strings.TrimPrefix(key, customFieldPrefix)] = s
	}

	return nil
}

// CustomField returns the value of the issue_custom_field_<slug> key and
// whether it was present on the delivery.
func (e *Event) CustomField(slug string) (string, bool) {
	value, ok := e.custom[slug]
	return value, ok
}

// CustomFields returns all dynamic custom field values keyed by slug.
func (e *Event) CustomFields() map[string]string {
	if e.custom == nil {
		return nil
	}
	out := make(map[string]string, len(e.custom))
	for slug, value := range e.custom {
		out[slug] = value
	}
	return out
}

// IsSnapshot reports whether the event carries the full issue snapshot.
// Every event type does except issue_message_new.
func (e *Event) IsSnapshot() bool {
	return e.Type != EventIssueMessageNew
}

// IsMessage reports whether the event carries message fields.
func (e *Event) IsMessage() bool {
	return e.Type == EventIssueMessageNew
}

// ParseEvent parses a webhook delivery body into a typed Event. Bodies
// with an event_type outside the known set return ErrUnknownEvent.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrInvalidPayload)
	}
	if !knownEvents[event.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}

	return &event, nil
}
