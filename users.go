package pylon

import (
	"context"
	"net/url"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// User is a support agent seat.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Status    string   `json:"status,omitempty"`
	Email     string   `json:"email"`
	Emails    []string `json:"emails,omitempty"`
	RoleID    string   `json:"role_id,omitempty"`
	AvatarURL string   `json:"avatar_url,omitempty"`
}

// UsersService handles the /users resource.
type UsersService service

type userListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams all users in the workspace.
func (s *UsersService) List(ctx context.Context) *pylonhttp.PageIterator[*User] {
	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*User, string, bool, error) {
		path, err := addOptions("/users", userListParams{Limit: DefaultPageLimit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var users []*User
		resp, err := s.client.http.Get(ctx, path, &users)
		if err != nil {
			return nil, "", false, err
		}
		return users, resp.Cursor, resp.HasNextPage, nil
	})
}

// Get fetches one user.
func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrUserIDRequired
	}

	var user User
	if _, err := s.client.http.Get(ctx, "/users/"+url.PathEscape(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}
