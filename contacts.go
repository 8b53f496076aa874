package pylon

import (
	"context"
	"net/url"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// Contact is a customer-side person.
type Contact struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email,omitempty"`
	Emails       []string     `json:"emails,omitempty"`
	Account      *Reference   `json:"account,omitempty"`
	CustomFields CustomFields `json:"custom_fields,omitempty"`
	PortalRole   string       `json:"portal_role,omitempty"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
}

// ContactsService handles the /contacts resource.
type ContactsService service

// ContactListOptions configures List.
type ContactListOptions struct {
	// Limit is the page size. Zero means DefaultPageLimit.
	Limit int
}

type contactListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams all contacts.
func (s *ContactsService) List(ctx context.Context, opts *ContactListOptions) *pylonhttp.PageIterator[*Contact] {
	limit := DefaultPageLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Contact, string, bool, error) {
		path, err := addOptions("/contacts", contactListParams{Limit: limit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var contacts []*Contact
		resp, err := s.client.http.Get(ctx, path, &contacts)
		if err != nil {
			return nil, "", false, err
		}
		return contacts, resp.Cursor, resp.HasNextPage, nil
	})
}

// Get fetches one contact.
func (s *ContactsService) Get(ctx context.Context, id string) (*Contact, error) {
	if id == "" {
		return nil, ErrContactIDRequired
	}

	var contact Contact
	if _, err := s.client.http.Get(ctx, "/contacts/"+url.PathEscape(id), &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContactRequest is the payload for Create.
type CreateContactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AccountID string `json:"account_id,omitempty"`
}

// Create registers a new contact.
func (s *ContactsService) Create(ctx context.Context, req *CreateContactRequest) (*Contact, error) {
	var contact Contact
	if _, err := s.client.http.Post(ctx, "/contacts", req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}
