package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/glance/internal/ipc"
)

const (
	ServerName    = "glance"
	ServerVersion = "0.1.0"
)

// daemonClient is the slice of the IPC client the tools need. Tests swap in
// a fake; the daemon never runs in CI.
type daemonClient interface {
	Toggle() error
	GetStatus() (*ipc.StatusData, error)
	Send(command string) (*ipc.ResultData, error)
	Confirm(cacheKey string, confirmed bool) (*ipc.ResultData, error)
	Capture() (*ipc.CaptureData, error)
	GetContext() (*ipc.ContextData, error)
	ClearContext() error
}

// Server exposes the running glance daemon to MCP clients over stdio. Every
// tool proxies through the daemon's unix socket; the server holds no overlay
// state of its own.
type Server struct {
	mcpServer *mcpsdk.Server
	client    daemonClient
}

// NewServer creates an MCP server that talks to the daemon at the default
// socket path.
func NewServer() *Server {
	client := ipc.NewClient()
	// Commands routed to the backend can take a while.
	client.SetTimeout(60 * time.Second)
	return newServerWithClient(client)
}

func newServerWithClient(client daemonClient) *Server {
	s := &Server{client: client}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_toggle",
		Description: "Toggle the command overlay between hidden and visible. Requires the glance daemon to be running.",
	}, s.handleToggle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_status",
		Description: "Report the overlay's current visibility state, the backend health, and the conversation turn count.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_send",
		Description: "Run a natural-language command through the backend and show the result on the overlay. If the result requires confirmation, call again with the returned cache_key and confirm set.",
	}, s.handleSend)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_context",
		Description: "List the current conversation context, or clear it on both the daemon and the backend when clear is true.",
	}, s.handleContext)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_capture",
		Description: "Capture a screenshot of the active monitor and return the saved file path.",
	}, s.handleCapture)
}
