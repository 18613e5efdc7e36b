package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	svc := itamservice.NewService(testutil.TestDB(t), time.Hour)
	ctx := system(context.Background())
	for _, a := range []struct{ host, loc, status string }{
		{"PC-1", "Paris", "active"},
		{"PC-2", "Lyon", "inactive"},
		{"PC-3", "Paris", "active"},
	} {
		loc, status := a.loc, a.status
		if _, err := svc.CreateAsset(ctx, models.AssetInput{Hostname: a.host, Location: &loc, Status: &status}); err != nil {
			t.Fatal(err)
		}
	}
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "list_records":
		result, err = srv.listRecords(ctx, req)
	case "get_facet":
		result, err = srv.getFacet(ctx, req)
	case "get_stats":
		result, err = srv.getStats(ctx, req)
	case "import_assets":
		result, err = srv.importAssets(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decode[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	var v T
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestListRecordsFiltersAndSearches(t *testing.T) {
	srv := testServer(t)

	page := decode[listengine.Page](t, callTool(t, srv, "list_records", map[string]any{
		"resource": "assets",
		"filters":  map[string]any{"status": "active", "location": "par"},
	}))
	if page.Total != 2 || page.Number != 1 {
		t.Errorf("filtered page = %+v", page)
	}

	page = decode[listengine.Page](t, callTool(t, srv, "list_records", map[string]any{
		"resource": "assets",
		"query":    "lyon",
	}))
	if page.Total != 1 || page.Items[0].Field("hostname") != "PC-2" {
		t.Errorf("search page = %+v", page)
	}
}

func TestListRecordsRejectsBadInput(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "list_records", map[string]any{"resource": "printers"}); !r.IsError {
		t.Error("unknown resource accepted")
	}
	r := callTool(t, srv, "list_records", map[string]any{
		"resource": "assets",
		"filters":  map[string]any{"status": "broken"},
	})
	if !r.IsError {
		t.Error("invalid enum value accepted")
	}
}

func TestGetFacet(t *testing.T) {
	srv := testServer(t)
	got := decode[[]string](t, callTool(t, srv, "get_facet", map[string]any{"resource": "assets", "field": "location"}))
	if diff := cmp.Diff([]string{"Lyon", "Paris"}, got); diff != "" {
		t.Errorf("facet (-want +got):\n%s", diff)
	}
}

func TestGetStats(t *testing.T) {
	srv := testServer(t)
	st := decode[models.Stats](t, callTool(t, srv, "get_stats", nil))
	if st.Assets != 3 || st.Users != 0 || st.OpenTickets != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestImportAssets(t *testing.T) {
	srv := testServer(t)
	manifest := `assets:
  - hostname: PC-1
    location: Berlin
  - hostname: PC-9
  - location: nowhere
`
	res := decode[importResult](t, callTool(t, srv, "import_assets", map[string]any{"manifest": manifest}))
	if res.Created != 1 || res.Updated != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Errors[0], "asset #3") {
		t.Errorf("error = %q", res.Errors[0])
	}

	got := decode[[]string](t, callTool(t, srv, "get_facet", map[string]any{"resource": "assets", "field": "location"}))
	if diff := cmp.Diff([]string{"Berlin", "Lyon", "Paris"}, got); diff != "" {
		t.Errorf("locations (-want +got):\n%s", diff)
	}

	if r := callTool(t, srv, "import_assets", map[string]any{"manifest": "assets: [oops"}); !r.IsError {
		t.Error("malformed manifest accepted")
	}
}

func TestSchemasResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readSchemas(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	var docs []schemaDoc
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 || docs[0].Name != "assets" || docs[0].PageSize != listengine.DefaultPageSize {
		t.Errorf("docs = %+v", docs)
	}
}
