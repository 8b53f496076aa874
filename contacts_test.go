package pylon

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestContactsList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writePage(w, []*Contact{
			{ID: "c1", Name: "Ada", Email: "ada@globex.com"},
			{ID: "c2", Name: "Grace", Email: "grace@globex.com"},
		}, "", false)
	})

	client, server := newTestClient(t, handler)
	defer server.Close()

	contacts, err := client.Contacts.List(context.Background(), nil).All(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	if contacts[0].Email != "ada@globex.com" {
		t.Errorf("Email = %q", contacts[0].Email)
	}
}

func TestContactsGet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeData(w, &Contact{ID: "c1", Name: "Ada", Account: &Reference{ID: "a1"}})
		})

		client, server := newTestClient(t, handler)
		defer server.Close()

		contact, err := client.Contacts.Get(context.Background(), "c1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if contact.Account == nil || contact.Account.ID != "a1" {
			t.Errorf("Account = %+v", contact.Account)
		}
	})

	t.Run("empty ID", func(t *testing.T) {
		client, server := newTestClient(t, http.NotFoundHandler())
		defer server.Close()

		_, err := client.Contacts.Get(context.Background(), "")
		if err != ErrContactIDRequired {
			t.Errorf("err = %v, want ErrContactIDRequired", err)
		}
	})
}

func TestContactsCreate(t *testing.T) {
	var body map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/contacts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeData(w, &Contact{ID: "c1", Name: "Ada", Email: "ada@globex.com"})
	})

	client, server := newTestClient(t, handler)
	defer server.Close()

	contact, err := client.Contacts.Create(context.Background(), &CreateContactRequest{
		Name:      "Ada",
		Email:     "ada@globex.com",
		AccountID: "a1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if contact.ID != "c1" {
		t.Errorf("ID = %q", contact.ID)
	}

	if body["name"] != "Ada" || body["email"] != "ada@globex.com" || body["account_id"] != "a1" {
		t.Errorf("body = %v", body)
	}
}
