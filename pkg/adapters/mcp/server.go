package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

const graphURI = "sluice://graph"

// ResultsResponse is the structured output of every editing tool.
type ResultsResponse struct {
	Results map[string]float64 `json:"results" jsonschema_description:"Combinator values of the last completed pass, keyed by node id"`
}

// Editor defines the interface required by the MCP server to drive a sluice graph.
type Editor interface {
	View() domain.GraphView
	Results() map[string]float64
	AddNode(n *domain.Node) error
	RemoveNode(id string) error
	SetValue(id string, v float64) error
	Connect(source, output, target, input string) (domain.Connection, error)
	DisconnectID(id string) error
	Process(ctx context.Context) error
}

// Server wraps the editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, version string, opts ...Option) *Server {
	s := &Server{
		editor:    editor,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("sluice-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get every node (with its current value or result) and every connection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.editor.View())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_results",
		mcp.WithDescription("Get the Combinator values of the last completed recompute pass."),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetResults))

	s.mcpServer.AddTool(mcp.NewTool("process",
		mcp.WithDescription("Run a recompute pass explicitly."),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleProcess))

	s.mcpServer.AddTool(mcp.NewTool("set_value",
		mcp.WithDescription("Set the number held by a value node. Triggers a recompute pass."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Value node id")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("New value")),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetValue))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node. Kind is \"value\" or \"combinator\"."),
		mcp.WithString("id", mcp.Description("Node id (generated when omitted)")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("value or combinator"), mcp.Enum("value", "combinator")),
		mcp.WithString("label", mcp.Description("Display label")),
		mcp.WithNumber("value", mcp.Description("Initial value of a value node")),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and every connection touching it."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveNode))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect an output to an input. Endpoints are written node.port, e.g. a.value -> sum.a."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source endpoint (node.output)")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target endpoint (node.input)")),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a connection, identified either by id or by its endpoints."),
		mcp.WithString("connection_id", mcp.Description("Connection id, e.g. a.value->sum.a")),
		mcp.WithString("from", mcp.Description("Source endpoint (node.output)")),
		mcp.WithString("to", mcp.Description("Target endpoint (node.input)")),
		mcp.WithOutputSchema[ResultsResponse](),
	), mcp.NewStructuredToolHandler(s.handleDisconnect))
}

type setValueArgs struct {
	NodeID string  `mapstructure:"node_id"`
	Value  float64 `mapstructure:"value"`
}

type disconnectArgs struct {
	ConnectionID string `mapstructure:"connection_id"`
	From         string `mapstructure:"from"`
	To           string `mapstructure:"to"`
}

type nodeArgs struct {
	ID    string   `mapstructure:"id"`
	Kind  string   `mapstructure:"kind"`
	Label string   `mapstructure:"label"`
	Value *float64 `mapstructure:"value"`
}

// decodeArgs maps raw tool arguments onto a typed struct.
// Weak typing accepts numbers sent as strings ("5") by less careful clients.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) results() ResultsResponse {
	return ResultsResponse{Results: s.editor.Results()}
}

func (s *Server) handleGetResults(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	return s.results(), nil
}

func (s *Server) handleProcess(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	if err := s.editor.Process(ctx); err != nil {
		return ResultsResponse{}, fmt.Errorf("process failed: %w", err)
	}
	return s.results(), nil
}

func (s *Server) handleSetValue(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	var in setValueArgs
	if err := decodeArgs(args, &in); err != nil {
		return ResultsResponse{}, err
	}
	if err := s.editor.SetValue(in.NodeID, in.Value); err != nil {
		return ResultsResponse{}, fmt.Errorf("set_value failed: %w", err)
	}
	return s.results(), nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	var in nodeArgs
	if err := decodeArgs(args, &in); err != nil {
		return ResultsResponse{}, err
	}
	n, err := schema.NodeSpec{ID: in.ID, Kind: in.Kind, Label: in.Label, Value: in.Value}.Node()
	if err != nil {
		return ResultsResponse{}, err
	}
	if err := s.editor.AddNode(n); err != nil {
		return ResultsResponse{}, fmt.Errorf("add_node failed: %w", err)
	}
	return s.results(), nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	var in struct {
		NodeID string `mapstructure:"node_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ResultsResponse{}, err
	}
	if err := s.editor.RemoveNode(in.NodeID); err != nil {
		return ResultsResponse{}, fmt.Errorf("remove_node failed: %w", err)
	}
	return s.results(), nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	var in schema.ConnectionSpec
	if err := decodeArgs(args, &in); err != nil {
		return ResultsResponse{}, err
	}
	c, err := in.Connection()
	if err != nil {
		return ResultsResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidEndpoint, err)
	}
	if _, err := s.editor.Connect(c.Source, c.SourceOutput, c.Target, c.TargetInput); err != nil {
		return ResultsResponse{}, fmt.Errorf("connect failed: %w", err)
	}
	return s.results(), nil
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ResultsResponse, error) {
	var in disconnectArgs
	if err := decodeArgs(args, &in); err != nil {
		return ResultsResponse{}, err
	}
	id := in.ConnectionID
	if id == "" {
		c, err := schema.ConnectionSpec{From: in.From, To: in.To}.Connection()
		if err != nil {
			return ResultsResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidEndpoint, err)
		}
		id = c.ID()
	}
	if err := s.editor.DisconnectID(id); err != nil {
		return ResultsResponse{}, fmt.Errorf("disconnect failed: %w", err)
	}
	return s.results(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Current Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.editor.View())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
