package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBaseSchema(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/meta/bases/appBase1/tables" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Errorf("Authorization = %q", got)
		}
		hits++
		fmt.Fprint(w, `{"tables":[
			{"id":"tbl1","name":"Projects","primaryFieldId":"fldA","fields":[
				{"id":"fldA","name":"Name","type":"singleLineText"},
				{"id":"fldB","name":"Status","type":"singleSelect",
				 "options":{"choices":[{"id":"sel1","name":"Open","color":"green"}]}}
			]},
			{"id":"tbl2","name":"Tasks","fields":[]}
		]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "key123")
	tables, err := c.BaseSchema(context.Background(), "appBase1")
	if err != nil {
		t.Fatalf("BaseSchema() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].Name != "Projects" || tables[1].Name != "Tasks" {
		t.Errorf("table order = %q, %q", tables[0].Name, tables[1].Name)
	}
	status := tables[0].Fields[1]
	if status.Options == nil || len(status.Options.Choices) != 1 || status.Options.Choices[0].Name != "Open" {
		t.Errorf("select options not decoded: %+v", status.Options)
	}

	// Second lookup must come from the cache.
	if _, err := c.BaseSchema(context.Background(), "appBase1"); err != nil {
		t.Fatalf("cached BaseSchema() error = %v", err)
	}
	if hits != 1 {
		t.Errorf("metadata endpoint hit %d times, want 1", hits)
	}
}

func TestTableSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tables":[{"id":"tbl1","name":"Projects","fields":[]}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k")

	t.Run("by id", func(t *testing.T) {
		table, err := c.TableSchema(context.Background(), "appBase1", "tbl1")
		if err != nil {
			t.Fatalf("TableSchema() error = %v", err)
		}
		if table.Name != "Projects" {
			t.Errorf("got table %q", table.Name)
		}
	})

	t.Run("by name", func(t *testing.T) {
		table, err := c.TableSchema(context.Background(), "appBase1", "Projects")
		if err != nil {
			t.Fatalf("TableSchema() error = %v", err)
		}
		if table.ID != "tbl1" {
			t.Errorf("got table id %q", table.ID)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := c.TableSchema(context.Background(), "appBase1", "tblNope")
		if err == nil {
			t.Fatal("expected an error for an unknown table")
		}
		if !strings.Contains(err.Error(), "tblNope") {
			t.Errorf("error %q does not name the table", err)
		}
	})
}

func TestListRecordsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/appBase1/tbl1" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprint(w, `{"records":[
				{"id":"rec1","fields":{"Name":"first"}},
				{"id":"rec2","fields":{"Name":"second"}}
			],"offset":"page2"}`)
		case "page2":
			fmt.Fprint(w, `{"records":[{"id":"rec3","fields":{"Name":"third"}}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			http.Error(w, "bad offset", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k")
	records, err := c.ListRecords(context.Background(), "appBase1", "tbl1")
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got := records[i].Fields["Name"]; got != want {
			t.Errorf("record %d Name = %v, want %q", i, got, want)
		}
	}
}

func TestGetErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"AUTHENTICATION_REQUIRED"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "bad")
	err := c.Whoami(context.Background())
	if err == nil {
		t.Fatal("expected an error for 401")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "AUTHENTICATION_REQUIRED") {
		t.Errorf("error %q missing status or body", err)
	}
}
