// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes lngkit tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lngkit/internal/langservice"
)

// FormatResourceURI is the URI of the format contract resource.
const FormatResourceURI = "lngkit://format"

// Server wraps the MCP server with lngkit tools.
type Server struct {
	mcp *server.MCPServer
	svc *langservice.Service
}

// New creates a new MCP server with all lngkit tools registered.
func New(svc *langservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"lngkit",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_languages",
		mcp.WithDescription("List the indexed languages with their key and diagnostic counts."),
	), s.listLanguages)

	s.mcp.AddTool(mcp.NewTool("translate",
		mcp.WithDescription("Resolve a single key in a language. Missing keys return close matches."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Language code, e.g. de_DE")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Translation key")),
	), s.translate)

	s.mcp.AddTool(mcp.NewTool("search_translations",
		mcp.WithDescription("Full-text search through translation keys and values of all languages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchTranslations)

	s.mcp.AddTool(mcp.NewTool("read_language",
		mcp.WithDescription("Read the raw content of a language file."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Language code, e.g. de_DE")),
	), s.readLanguage)

	s.mcp.AddTool(mcp.NewTool("check_lng",
		mcp.WithDescription("Parse language file content without storing it. Returns resolved "+
			"translations, warning/error counts and every diagnostic with its line."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Language file content")),
	), s.checkLng)

	s.mcp.AddTool(mcp.NewTool("write_language",
		mcp.WithDescription("Create or replace a language file. Content MUST follow the "+
			"format contract (get_format_contract tool or the lngkit://format resource) "+
			"and must parse without errors."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Language code, e.g. de_DE")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Language file content")),
		mcp.WithString("if_match", mcp.Description("Checksum of the current file for optimistic concurrency")),
	), s.writeLanguage)

	s.mcp.AddTool(mcp.NewTool("import_language",
		mcp.WithDescription("Download a language file from an http(s) URL or a base64 data URI "+
			"and store it. The code defaults to the file name in the URL."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:text/plain;base64,... URI")),
		mcp.WithString("code", mcp.Description("Language code override")),
	), s.importLanguage)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the language file format contract. "+
			"Call this before writing language files to ensure correct structure."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(FormatResourceURI, "Language File Format",
			mcp.WithResourceDescription("Language file format with settings lines, blocks and references."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// errorResult turns a service error into a tool error, keeping parse
// diagnostics and key suggestions visible to the caller.
func errorResult(err error) *mcp.CallToolResult {
	var knf *langservice.KeyNotFoundError
	var inv *langservice.InvalidContentError
	switch {
	case errors.As(err, &knf):
		msg := knf.Error()
		if len(knf.Suggestions) > 0 {
			msg += "; did you mean: " + strings.Join(knf.Suggestions, ", ")
		}
		return mcp.NewToolResultError(msg)
	case errors.As(err, &inv):
		var sb strings.Builder
		sb.WriteString(inv.Error())
		for _, d := range inv.Result.Diagnostics {
			where := fmt.Sprintf("line %d", d.Line)
			if d.Line == 0 {
				where = "block " + d.Block
			}
			fmt.Fprintf(&sb, "\n%s: %s: %s", where, d.Severity, d.Message)
		}
		return mcp.NewToolResultError(sb.String())
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listLanguages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Languages(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no languages found"), nil
	}
	return jsonResult(items), nil
}

func (s *Server) translate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.Translate(ctx, code, strings.TrimSpace(key))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(v), nil
}

func (s *Server) searchTranslations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readLanguage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Language(ctx, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", code)), nil
	}
	return mcp.NewToolResultText(d.Content), nil
}

type checkResult struct {
	Source       string            `json:"source"`
	OK           bool              `json:"ok"`
	Warnings     int               `json:"warnings"`
	Errors       int               `json:"errors"`
	Translations map[string]string `json:"translations"`
	Diagnostics  any               `json:"diagnostics"`
}

func (s *Server) checkLng(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// A unique source keeps log lines of concurrent checks apart.
	source := "mcp-check-" + uuid.NewString()
	res := s.svc.Check(ctx, source, []byte(content))
	return jsonResult(checkResult{
		Source:       source,
		OK:           res.OK(),
		Warnings:     res.Warnings,
		Errors:       res.Errors,
		Translations: res.Translations,
		Diagnostics:  res.Diagnostics,
	}), nil
}

func (s *Server) writeLanguage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, created, err := s.svc.PutLanguage(ctx, code, []byte(content), req.GetString("if_match", ""))
	if err != nil {
		return errorResult(err), nil
	}
	verb := "updated"
	if created {
		verb = "created"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s (%d keys, %d warnings, checksum %s)",
		verb, d.File, d.Keys, d.Warnings, d.Checksum)), nil
}

func (s *Server) getFormatContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatResourceURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
