package pylon

import (
	"context"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// TeamMember is a user's membership entry inside a team.
type TeamMember struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Team is a routing group of users.
type Team struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Users []TeamMember `json:"users,omitempty"`
}

// TeamsService handles the /teams resource.
type TeamsService service

type teamListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams all teams.
func (s *TeamsService) List(ctx context.Context) *pylonhttp.PageIterator[*Team] {
	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Team, string, bool, error) {
		path, err := addOptions("/teams", teamListParams{Limit: DefaultPageLimit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var teams []*Team
		resp, err := s.client.http.Get(ctx, path, &teams)
		if err != nil {
			return nil, "", false, err
		}
		return teams, resp.Cursor, resp.HasNextPage, nil
	})
}
