// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes decision record tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/adrkit/internal/catalog"
	"github.com/starford/adrkit/internal/record"
	"github.com/starford/adrkit/internal/template"
)

// ContractURI is the resource URI of the record format contract.
const ContractURI = "adr://record-format"

// Server wraps the MCP server with decision record tools.
type Server struct {
	mcp      *server.MCPServer
	records  *record.Service
	catalog  catalog.Catalog
	defaults record.Defaults
}

// New creates a new MCP server with all tools registered.
func New(records *record.Service, cat catalog.Catalog, defaults record.Defaults, version string) *Server {
	s := &Server{records: records, catalog: cat, defaults: defaults}

	s.mcp = server.NewMCPServer(
		"adrkit",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_adr",
		mcp.WithDescription("Create a new architecture decision record from a template. "+
			"The file name is allocated automatically (NNNN-title.md or title.md). "+
			"Read the contract first via get_adr_contract or the "+ContractURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Decision title, e.g. 'Use PostgreSQL for persistence'")),
		mcp.WithString("status", mcp.Description("Initial status (default proposed)")),
		mcp.WithString("template", mcp.Description("Record template"), mcp.Enum(template.RecordTemplates...)),
		mcp.WithString("strategy", mcp.Description("File naming strategy"), mcp.Enum("auto", "number", "slug")),
		mcp.WithString("deciders", mcp.Description("Comma separated decision makers")),
		mcp.WithString("technical_story", mcp.Description("Ticket or story the decision belongs to")),
		mcp.WithString("chosen_option", mcp.Description("Chosen option (madr template)")),
		mcp.WithString("date", mcp.Description("Decision date YYYY-MM-DD (default today)")),
		mcp.WithBoolean("update_index", mcp.Description("Also list the record in the ADR index")),
	), s.createADR)

	s.mcp.AddTool(mcp.NewTool("set_adr_status",
		mcp.WithDescription("Change the status of an existing record in place. Only the status value "+
			"is rewritten; the rest of the file is preserved byte-for-byte."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Record path relative to the repository root")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status, e.g. accepted, rejected, superseded")),
		mcp.WithBoolean("update_index", mcp.Description("Also update the status shown in the ADR index")),
	), s.setADRStatus)

	s.mcp.AddTool(mcp.NewTool("list_adrs",
		mcp.WithDescription("List decision records with their title, status and date."),
		mcp.WithString("status", mcp.Description("Optional status filter (case-insensitive)")),
	), s.listADRs)

	s.mcp.AddTool(mcp.NewTool("read_adr",
		mcp.WithDescription("Read the full content of a decision record."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Record path relative to the repository root")),
	), s.readADR)

	s.mcp.AddTool(mcp.NewTool("search_adrs",
		mcp.WithDescription("Full-text search through record titles, statuses and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchADRs)

	s.mcp.AddTool(mcp.NewTool("bootstrap_adrs",
		mcp.WithDescription("Create the ADR directory, its index and a first record adopting ADRs. "+
			"Safe to call again: an existing index and first record are kept."),
		mcp.WithString("first_title", mcp.Description("Title of the first record")),
		mcp.WithString("first_status", mcp.Description("Status of the first record (default accepted)")),
		mcp.WithString("deciders", mcp.Description("Comma separated decision makers")),
		mcp.WithBoolean("force_index", mcp.Description("Overwrite an existing index")),
	), s.bootstrapADRs)

	s.mcp.AddTool(mcp.NewTool("get_adr_contract",
		mcp.WithDescription("Returns the decision record format contract. "+
			"Call this before creating or editing records."),
	), s.getADRContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Decision Record Format Contract",
			mcp.WithResourceDescription("Layout, status conventions and index format of decision records."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createADR(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.records.Create(ctx, s.defaults.Create(record.CreateRequest{
		Title:          title,
		Status:         req.GetString("status", ""),
		Template:       req.GetString("template", ""),
		Strategy:       req.GetString("strategy", ""),
		Deciders:       req.GetString("deciders", ""),
		TechnicalStory: req.GetString("technical_story", ""),
		ChosenOption:   req.GetString("chosen_option", ""),
		Date:           req.GetString("date", ""),
		UpdateIndex:    req.GetBool("update_index", false),
	}))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) setADRStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.records.SetStatus(ctx, s.defaults.SetStatus(record.SetStatusRequest{
		Path:        path,
		Status:      status,
		UpdateIndex: req.GetBool("update_index", false),
	}))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) listADRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.records.List(ctx, s.defaults.List(record.ListRequest{Status: req.GetString("status", "")}))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recs)
}

func (s *Server) readADR(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.records.Get(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(d.Content), nil
}

func (s *Server) searchADRs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.catalog.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) bootstrapADRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.records.Bootstrap(ctx, s.defaults.Bootstrap(record.BootstrapRequest{
		FirstTitle:  req.GetString("first_title", ""),
		FirstStatus: req.GetString("first_status", ""),
		Deciders:    req.GetString("deciders", ""),
		ForceIndex:  req.GetBool("force_index", false),
	}))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) getADRContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
