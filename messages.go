package pylon

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// MessageContact is the contact half of a message author.
type MessageContact struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// MessageUser is the agent half of a message author.
type MessageUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// MessageAuthor identifies who wrote a message. Contact is set for
// customer messages and User for agent replies; Slack messages may carry
// only a display name.
type MessageAuthor struct {
	Contact   *MessageContact `json:"contact,omitempty"`
	User      *MessageUser    `json:"user,omitempty"`
	Name      string          `json:"name,omitempty"`
	AvatarURL string          `json:"avatar_url,omitempty"`
}

// IsAgent reports whether the message came from a support agent.
func (a *MessageAuthor) IsAgent() bool {
	return a != nil && a.User != nil
}

// Email returns the best available author email, or "".
func (a *MessageAuthor) Email() string {
	switch {
	case a == nil:
		return ""
	case a.Contact != nil && a.Contact.Email != "":
		return a.Contact.Email
	case a.User != nil:
		return a.User.Email
	}
	return ""
}

// DisplayName returns the best available author name, or "".
func (a *MessageAuthor) DisplayName() string {
	switch {
	case a == nil:
		return ""
	case a.Name != "":
		return a.Name
	case a.User != nil:
		return a.User.Name
	}
	return ""
}

// EmailInfo carries the envelope for messages that arrived by mail.
type EmailInfo struct {
	FromEmail string   `json:"from_email,omitempty"`
	ToEmails  []string `json:"to_emails,omitempty"`
	CCEmails  []string `json:"cc_emails,omitempty"`
	BCCEmails []string `json:"bcc_emails,omitempty"`
}

// SlackMessageInfo locates a message inside Slack.
type SlackMessageInfo struct {
	ChannelID string `json:"channel_id,omitempty"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	MessageTS string `json:"message_ts,omitempty"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          string    `json:"id,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

// uuidPrefix matches the storage key Pylon prepends to uploaded file
// names.
var uuidPrefix = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}-(.+)$`)

// AttachmentFromURL builds an Attachment from a bare file URL, recovering
// the original filename from the last path segment.
func AttachmentFromURL(rawURL string) Attachment {
	att := Attachment{URL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil {
		return att
	}
	segment := u.Path
	if idx := strings.LastIndex(segment, "/"); idx >= 0 {
		segment = segment[idx+1:]
	}
	if unquoted, err := url.PathUnescape(segment); err == nil {
		segment = unquoted
	}
	if m := uuidPrefix.FindStringSubmatch(segment); m != nil {
		segment = m[1]
	}
	att.Filename = segment
	return att
}

// Message is one entry in an issue conversation.
type Message struct {
	ID          string            `json:"id"`
	MessageHTML string            `json:"message_html,omitempty"`
	MessageText string            `json:"message_text,omitempty"`
	Timestamp   Timestamp         `json:"timestamp"`
	Source      string            `json:"source,omitempty"`
	Author      *MessageAuthor    `json:"author,omitempty"`
	IsPrivate   bool              `json:"is_private"`
	EmailInfo   *EmailInfo        `json:"email_info,omitempty"`
	SlackInfo   *SlackMessageInfo `json:"slack_info,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// UnmarshalJSON decodes a message, deriving Attachments from the bare
// file_urls list when the API sends URLs instead of structured
// attachments.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	aux := struct {
		*plain
		FileURLs []string `json:"file_urls"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(m.Attachments) == 0 {
		for _, u := range aux.FileURLs {
			m.Attachments = append(m.Attachments, AttachmentFromURL(u))
		}
	}
	return nil
}
