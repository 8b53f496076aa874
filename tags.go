package pylon

import (
	"context"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// Tag is a label that can be applied to issues and accounts.
type Tag struct {
	ID         string `json:"id"`
	Value      string `json:"value"`
	ObjectType string `json:"object_type,omitempty"`
	HexColor   string `json:"hex_color,omitempty"`
}

// TagsService handles the /tags resource.
type TagsService service

type tagListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams all tags.
func (s *TagsService) List(ctx context.Context) *pylonhttp.PageIterator[*Tag] {
	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Tag, string, bool, error) {
		path, err := addOptions("/tags", tagListParams{Limit: DefaultPageLimit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var tags []*Tag
		resp, err := s.client.http.Get(ctx, path, &tags)
		if err != nil {
			return nil, "", false, err
		}
		return tags, resp.Cursor, resp.HasNextPage, nil
	})
}
