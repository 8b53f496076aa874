package pylon

import (
	"context"
	"encoding/json"
	"net/url"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// Account is a customer account.
type Account struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Owner         *Reference        `json:"owner,omitempty"`
	Domain        string            `json:"domain,omitempty"`
	Domains       []string          `json:"domains,omitempty"`
	PrimaryDomain string            `json:"primary_domain,omitempty"`
	Type          string            `json:"type,omitempty"`
	Channels      []json.RawMessage `json:"channels,omitempty"`
	CreatedAt     Timestamp         `json:"created_at"`
	Tags          []string          `json:"tags,omitempty"`
	CustomFields  CustomFields      `json:"custom_fields,omitempty"`

	// LatestCustomerActivityTime is empty for accounts that have never
	// written in.
	LatestCustomerActivityTime Timestamp `json:"latest_customer_activity_time"`

	ExternalIDs map[string]string `json:"external_ids,omitempty"`
}

// AccountsService handles the /accounts resource.
type AccountsService service

// AccountListOptions configures List and SearchByCustomField.
type AccountListOptions struct {
	// Limit is the page size. Zero means DefaultPageLimit.
	Limit int
}

type accountListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams all accounts.
func (s *AccountsService) List(ctx context.Context, opts *AccountListOptions) *pylonhttp.PageIterator[*Account] {
	limit := DefaultPageLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Account, string, bool, error) {
		path, err := addOptions("/accounts", accountListParams{Limit: limit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var accounts []*Account
		resp, err := s.client.http.Get(ctx, path, &accounts)
		if err != nil {
			return nil, "", false, err
		}
		return accounts, resp.Cursor, resp.HasNextPage, nil
	})
}

// Get fetches one account.
func (s *AccountsService) Get(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, ErrAccountIDRequired
	}

	var account Account
	if _, err := s.client.http.Get(ctx, "/accounts/"+url.PathEscape(id), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// accountSearchRequest is the POST body for /accounts/search. Account
// search speaks a flat single-condition grammar rather than the
// composable issue filter grammar.
type accountSearchRequest struct {
	Filter accountCondition `json:"filter"`
	Limit  int              `json:"limit"`
	Cursor string           `json:"cursor,omitempty"`
}

type accountCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// SearchByCustomField streams accounts whose custom field equals value.
func (s *AccountsService) SearchByCustomField(ctx context.Context, slug, value string, opts *AccountListOptions) *pylonhttp.PageIterator[*Account] {
	limit := DefaultPageLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Account, string, bool, error) {
		if slug == "" {
			return nil, "", false, ErrFieldSlugRequired
		}

		body := accountSearchRequest{
			Filter: accountCondition{Field: slug, Operator: "equals", Value: value},
			Limit:  limit,
			Cursor: cursor,
		}
		var accounts []*Account
		resp, err := s.client.http.Post(ctx, "/accounts/search", body, &accounts)
		if err != nil {
			return nil, "", false, err
		}
		return accounts, resp.Cursor, resp.HasNextPage, nil
	})
}
