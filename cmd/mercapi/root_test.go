package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ggoodman/mercapi-go/mercapitest"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, srv *mercapitest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MERCAPI_BASE_URL", srv.URL)
	t.Setenv("MERCAPI_CACHE", "none")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestItemCommand_JSON(t *testing.T) {
	srv := mercapitest.NewServer(t)
	srv.AddItem("m94786104879", mercapitest.ItemFixture("m94786104879", "362164700"))

	out, err := run(t, srv, "item", "m94786104879", "-o", "json")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got["id"] != "m94786104879" {
		t.Fatalf("id = %v", got["id"])
	}
	seller, _ := got["seller"].(map[string]any)
	if seller["id"] != "362164700" {
		t.Fatalf("seller.id = %v", seller["id"])
	}
}

func TestProfileCommand_YAML(t *testing.T) {
	srv := mercapitest.NewServer(t)
	srv.AddProfile("362164700", mercapitest.ProfileFixture("362164700"))

	out, err := run(t, srv, "profile", "362164700")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if got["name"] != "nananao" {
		t.Fatalf("name = %v", got["name"])
	}
}

func TestItemCommand_NotFound(t *testing.T) {
	srv := mercapitest.NewServer(t)
	if _, err := run(t, srv, "item", "m0"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchCommand_Pages(t *testing.T) {
	srv := mercapitest.NewServer(t)
	srv.AddSearchPage("", mercapitest.SearchPage{
		Items:         []map[string]any{mercapitest.SearchItemFixture("m1", "1", 100)},
		NextPageToken: "v1:1",
	})
	srv.AddSearchPage("v1:1", mercapitest.SearchPage{
		Items: []map[string]any{mercapitest.SearchItemFixture("m2", "1", 200)},
	})

	out, err := run(t, srv, "search", "sharpnel", "--pages", "3", "--category", "75", "-o", "json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var pages []map[string]any
	if err := json.Unmarshal([]byte(out), &pages); err != nil {
		t.Fatalf("output is not a JSON list: %v\n%s", err, out)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if n := srv.RequestCount(mercapitest.EndpointSearch); n != 2 {
		t.Fatalf("sent %d searches, want 2", n)
	}
}

func TestSearchCommand_ConditionsFile(t *testing.T) {
	srv := mercapitest.NewServer(t)
	path := filepath.Join(t.TempDir(), "cond.yaml")
	doc := "query: sharpnel\ncategories: [75]\nprice_min: 500\nstatus: [STATUS_SOLD_OUT]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, srv, "search", "--conditions", path, "--exclude", "beatmania"); err != nil {
		t.Fatalf("search: %v", err)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests", len(reqs))
	}
	var body struct {
		SearchCondition struct {
			Keyword        string   `json:"keyword"`
			CategoryID     []int    `json:"categoryId"`
			PriceMin       int      `json:"priceMin"`
			Status         []string `json:"status"`
			ExcludeKeyword string   `json:"excludeKeyword"`
		} `json:"searchCondition"`
	}
	if err := json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatal(err)
	}
	c := body.SearchCondition
	if c.Keyword != "sharpnel" || c.PriceMin != 500 || c.ExcludeKeyword != "beatmania" {
		t.Fatalf("unexpected condition: %+v", c)
	}
	if len(c.CategoryID) != 1 || c.CategoryID[0] != 75 {
		t.Fatalf("categoryId = %v", c.CategoryID)
	}
	if strings.Join(c.Status, ",") != "STATUS_SOLD_OUT,STATUS_TRADING" {
		t.Fatalf("status = %v", c.Status)
	}
}

func TestSchemaCommand(t *testing.T) {
	srv := mercapitest.NewServer(t)
	out, err := run(t, srv, "schema", "-o", "json")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{`"SORT_PRICE"`, `"price_min"`, `"query"`} {
		if !strings.Contains(out, want) {
			t.Errorf("schema lacks %s", want)
		}
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	srv := mercapitest.NewServer(t)
	srv.AddItem("m1", mercapitest.ItemFixture("m1", "1"))
	if _, err := run(t, srv, "item", "m1", "-o", "xml"); err == nil {
		t.Fatal("expected error")
	}
}
