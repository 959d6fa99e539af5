// Package mcp exposes the espalier compiler as a Model Context Protocol
// server, so AI agents can validate and inspect machine definitions as tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// ValidationResult is the structured output of the validate_machine tool.
type ValidationResult struct {
	Valid  bool                  `json:"valid" jsonschema_description:"Whether the definition compiled"`
	Model  *machine.StateMachine `json:"model,omitempty" jsonschema_description:"The compiled model when valid"`
	Error  string                `json:"error,omitempty" jsonschema_description:"The first violation when invalid"`
	Line   int                   `json:"line,omitempty" jsonschema_description:"Line of the violation, 1-based"`
	Column int                   `json:"column,omitempty" jsonschema_description:"Column of the violation, 1-based"`
}

// Server exposes machine validation as an MCP Server.
type Server struct {
	compiler  *espalier.Compiler
	source    []byte
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. When source is non-nil it is
// additionally exposed as the espalier://machine resource.
func NewServer(source []byte) *Server {
	s := &Server{
		compiler:  espalier.New(),
		source:    source,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
	}
	s.registerTools()
	if source != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate_machine
	validateTool := mcp.NewTool("validate_machine",
		mcp.WithDescription("Validate a state machine definition (YAML or JSON). Returns the compiled model, or the first violation with its line and column."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The machine definition document")),
		mcp.WithOutputSchema[ValidationResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: machine_diagram
	diagramTool := mcp.NewTool("machine_diagram",
		mcp.WithDescription("Render a Mermaid state diagram for a machine definition."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The machine definition document")),
	)
	s.mcpServer.AddTool(diagramTool, s.renderTool(graph.Mermaid))

	// TOOL: describe_machine
	describeTool := mcp.NewTool("describe_machine",
		mcp.WithDescription("Summarize a machine definition as Markdown: timers, events, and per-state behavior."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The machine definition document")),
	)
	s.mcpServer.AddTool(describeTool, s.renderTool(tui.Describe))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ValidationResult, error) {
	definition, _ := args["definition"].(string)

	m, err := s.compiler.Compile([]byte(definition))
	if err != nil {
		result := ValidationResult{Error: err.Error()}
		var docErr *document.Error
		if errors.As(err, &docErr) {
			result.Error = docErr.Msg
			result.Line = docErr.Pos.Line
			result.Column = docErr.Pos.Column
		}
		return result, nil
	}

	return ValidationResult{Valid: true, Model: m}, nil
}

// renderTool compiles the submitted definition and renders it with the given
// presenter. Validation failures surface as tool errors, not protocol errors.
func (s *Server) renderTool(render func(*machine.StateMachine) string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		definition, err := request.RequireString("definition")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		m, err := s.compiler.Compile([]byte(definition))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid definition: %v", err)), nil
		}

		return mcp.NewToolResultText(render(m)), nil
	}
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://machine
	s.mcpServer.AddResource(mcp.NewResource("espalier://machine", "Compiled Machine Model",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		m, err := s.compiler.Compile(s.source)
		if err != nil {
			return nil, fmt.Errorf("failed to compile machine: %w", err)
		}
		jsonBytes, _ := json.Marshal(m)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://machine",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
