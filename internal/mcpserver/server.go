// Package mcpserver exposes read access to the inventory, plus manifest
// imports, as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/inventory"
	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/session"
)

const (
	schemasURI  = "itam://schemas"
	manifestURI = "itam://manifest-format"
)

// Server wraps the MCP server with the inventory tools.
type Server struct {
	mcp *server.MCPServer
	svc *itamservice.Service
}

// New creates an MCP server with all tools registered. Tools run with the
// system identity.
func New(svc *itamservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ITAM",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("Search, filter and page through assets, users or tickets. "+
			"Read the itam://schemas resource for the searchable and filterable fields."),
		mcp.WithString("resource", mcp.Required(), mcp.Enum("assets", "users", "tickets")),
		mcp.WithString("query", mcp.Description("Case-insensitive free-text search")),
		mcp.WithObject("filters", mcp.Description(`Field constraints, e.g. {"status": "active", "location": "par"}`)),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("get_facet",
		mcp.WithDescription("Distinct sorted values of one field across a whole collection."),
		mcp.WithString("resource", mcp.Required(), mcp.Enum("assets", "users", "tickets")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name, e.g. location")),
	), s.getFacet)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Dashboard counters: assets, users and open tickets."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("import_assets",
		mcp.WithDescription("Create or update assets from a YAML inventory manifest. "+
			"Assets are matched by serial, or by hostname when the serial is empty. "+
			"Read the itam://manifest-format resource first."),
		mcp.WithString("manifest", mcp.Required(), mcp.Description("YAML manifest content")),
	), s.importAssets)

	s.mcp.AddResource(
		mcp.NewResource(schemasURI, "Field schemas",
			mcp.WithResourceDescription("Searchable, filterable and enumerated fields of every resource."),
			mcp.WithMIMEType("application/json"),
		),
		s.readSchemas,
	)
	s.mcp.AddResource(
		mcp.NewResource(manifestURI, "Inventory manifest format",
			mcp.WithResourceDescription("YAML format accepted by import_assets and the inventory directory."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readManifestFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func system(ctx context.Context) context.Context {
	return session.WithIdentity(ctx, itamservice.SystemIdentity)
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errResult(err error, noun string) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperr.Message(err, noun))
}

// resourceArgs resolves the resource argument to its schema and records.
func (s *Server) resourceArgs(ctx context.Context, req mcp.CallToolRequest) (listengine.Schema, []listengine.Record, *mcp.CallToolResult) {
	name, err := req.RequireString("resource")
	if err != nil {
		return listengine.Schema{}, nil, mcp.NewToolResultError(err.Error())
	}
	schema, ok := listengine.SchemaFor(name)
	if !ok {
		return listengine.Schema{}, nil, mcp.NewToolResultError(fmt.Sprintf("unknown resource: %s", name))
	}
	recs, err := s.svc.Records(system(ctx), name)
	if err != nil {
		return schema, nil, errResult(err, name)
	}
	return schema, recs, nil
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema, recs, fail := s.resourceArgs(ctx, req)
	if fail != nil {
		return fail, nil
	}

	filters := schema.NewFilterState()
	if raw, ok := req.GetArguments()["filters"].(map[string]any); ok {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, field := range keys {
			value := fmt.Sprint(raw[field])
			if err := schema.CheckFilter(field, value); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			filters = schema.SetFilter(filters, field, value)
		}
	}

	page := listengine.New(schema).Query(recs, req.GetString("query", ""), filters, req.GetInt("page", 1))
	return jsonResult(page), nil
}

func (s *Server) getFacet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, err := req.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, recs, fail := s.resourceArgs(ctx, req)
	if fail != nil {
		return fail, nil
	}
	return jsonResult(listengine.ComputeFacet(recs, field)), nil
}

func (s *Server) getStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Stats(system(ctx))
	if err != nil {
		return errResult(err, "stats"), nil
	}
	return jsonResult(st), nil
}

type importResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Server) importAssets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manifest, err := req.RequireString("manifest")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	assets, err := inventory.Parse([]byte(manifest))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctx = system(ctx)
	var res importResult
	for i, in := range assets {
		_, created, err := s.svc.ImportAsset(ctx, in)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("asset #%d (%s): %s", i+1, in.Hostname, apperr.Message(err, "asset")))
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}
	return jsonResult(res), nil
}

type schemaDoc struct {
	Name       string              `json:"name"`
	Searchable []string            `json:"searchable"`
	Filterable []string            `json:"filterable"`
	Enums      map[string][]string `json:"enums"`
	PageSize   int                 `json:"page_size"`
}

func schemaDocs() []schemaDoc {
	var out []schemaDoc
	for _, sc := range []listengine.Schema{listengine.AssetSchema, listengine.UserSchema, listengine.TicketSchema} {
		out = append(out, schemaDoc{
			Name:       sc.Name,
			Searchable: sc.Searchable,
			Filterable: sc.Filterable,
			Enums:      sc.Enums,
			PageSize:   sc.EffectivePageSize(),
		})
	}
	return out
}

func (s *Server) readSchemas(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(schemaDocs(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: schemasURI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) readManifestFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: manifestURI, MIMEType: "text/markdown", Text: ManifestFormat},
	}, nil
}
