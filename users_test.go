package pylon

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestUsersList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writePage(w, []*User{
			{ID: "u1", Name: "Sam", Email: "sam@support.example.com"},
		}, "", false)
	})

	client, server := newTestClient(t, handler)
	defer server.Close()

	users, err := client.Users.List(context.Background()).All(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Email != "sam@support.example.com" {
		t.Errorf("users = %+v", users)
	}
}

func TestUsersGet(t *testing.T) {
	t.Run("bare body without envelope", func(t *testing.T) {
		// Some endpoints return the entity without the data wrapper.
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(&User{ID: "u1", Name: "Sam"})
		})

		client, server := newTestClient(t, handler)
		defer server.Close()

		user, err := client.Users.Get(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if user.Name != "Sam" {
			t.Errorf("Name = %q", user.Name)
		}
	})

	t.Run("empty ID", func(t *testing.T) {
		client, server := newTestClient(t, http.NotFoundHandler())
		defer server.Close()

		_, err := client.Users.Get(context.Background(), "")
		if err != ErrUserIDRequired {
			t.Errorf("err = %v, want ErrUserIDRequired", err)
		}
	})
}
