package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentsURI lists the documents known to the loader.
const DocumentsURI = "arbor://documents"

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Engine
	loader    ports.DocumentLoader
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLoader lets tools name a stored document instead of passing the graph inline.
func WithLoader(loader ports.DocumentLoader) Option {
	return func(s *Server) {
		s.loader = loader
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(version)),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.loader != nil {
		s.registerResources()
	}
	return s
}

// MCPServer exposes the underlying server, mainly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func graphArgs(extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("graph", mcp.Description("Decision tree document, JSON or YAML. Required unless 'document' is given.")),
		mcp.WithString("document", mcp.Description("ID of a stored document to load instead of 'graph'.")),
	}
	return append(opts, extra...)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_tree", graphArgs(
		mcp.WithDescription("Check a decision tree for structural defects: dangling or self references, invalid targets, cycles."),
	)...), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("analyze_tree", graphArgs(
		mcp.WithDescription("Validate a decision tree and detect contradictory, circular, redundant and overlapping logic without changing it."),
	)...), s.handleAnalyze)

	s.mcpServer.AddTool(mcp.NewTool("repair_tree", graphArgs(
		mcp.WithDescription("Detect conflicts and repair the tree. Returns the report, including the repaired graph."),
	)...), s.handleRepair)
}

// loadGraph resolves the graph argument, or the named document when a loader is set.
func (s *Server) loadGraph(request mcp.CallToolRequest) (*codec.Document, string, error) {
	docID := request.GetString("document", "")
	raw := request.GetString("graph", "")

	var data []byte
	switch {
	case raw != "":
		data = []byte(raw)
	case docID != "" && s.loader != nil:
		content, err := s.loader.GetDocument(docID)
		if err != nil {
			return nil, "", err
		}
		data = content
	case docID != "":
		return nil, "", fmt.Errorf("document %q requested but no document source is configured", docID)
	default:
		return nil, "", fmt.Errorf("missing required argument 'graph'")
	}

	doc, err := codec.Decode(data)
	if err != nil {
		return nil, "", err
	}
	if docID == "" {
		docID = doc.ID()
	}
	return doc, docID, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, _, err := s.loadGraph(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.engine.Validate(ctx, doc.Graph))
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, docID, err := s.loadGraph(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.engine.Analyze(ctx, docID, doc.Graph)
	if err != nil {
		s.logger.Error("MCP analyze failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("analyze failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (s *Server) handleRepair(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, docID, err := s.loadGraph(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.engine.Repair(ctx, docID, doc.Graph)
	if err != nil {
		s.logger.Error("MCP repair failed", "err", err, "document_id", docID)
		return mcp.NewToolResultError(fmt.Sprintf("repair failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DocumentsURI, "Decision Tree Documents",
		mcp.WithResourceDescription("IDs of the documents that tools accept in the 'document' argument."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.loader.ListDocuments()
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      DocumentsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
