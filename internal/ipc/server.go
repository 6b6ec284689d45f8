package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/glance/internal/bridge"
	"github.com/1broseidon/glance/internal/config"
	"github.com/1broseidon/glance/internal/overlay"
	"github.com/1broseidon/glance/internal/runtimepath"
)

// CaptureFunc grabs the active monitor to a file and returns its path.
type CaptureFunc func() (string, error)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	controller   *overlay.Controller
	backend      *bridge.Client
	capture      CaptureFunc
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, controller *overlay.Controller, backend *bridge.Client, capture CaptureFunc, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		controller: controller,
		backend:    backend,
		capture:    capture,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandToggle:
		s.controller.Toggle()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandShow:
		s.controller.Show()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandHide:
		s.controller.Hide()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSend:
		return s.handleSend(req.Payload)
	case CommandConfirm:
		return s.handleConfirm(req.Payload)
	case CommandCapture:
		return s.handleCapture()
	case CommandGetContext:
		return s.handleGetContext()
	case CommandClearContext:
		return s.handleClearContext()
	case CommandGetHealth:
		return s.handleGetHealth(req.Payload)
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		DaemonRunning: true,
		Overlay:       s.controller.Snapshot(),
		BackendURL:    s.backend.BaseURL(),
		BackendHealth: s.backend.Health().String(),
		TurnCount:     len(s.backend.Turns()),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleSend executes a command against the backend and displays the result
// on the overlay, exactly as if it had been typed there.
func (s *Server) handleSend(payload json.RawMessage) *Response {
	var sendReq SendPayload
	if err := json.Unmarshal(payload, &sendReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid send payload: %v", err))
	}
	command := strings.TrimSpace(sendReq.Command)
	if command == "" {
		return NewErrorResponse("command is required")
	}

	result := s.backend.Execute(command)
	s.controller.HandleResult(result)

	resp, err := NewOKResponse(ResultDataFrom(result))
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleConfirm answers a held-back command (dangerous operations the
// backend wants an explicit yes for).
func (s *Server) handleConfirm(payload json.RawMessage) *Response {
	var confirmReq ConfirmPayload
	if err := json.Unmarshal(payload, &confirmReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid confirm payload: %v", err))
	}
	if confirmReq.CacheKey == "" {
		return NewErrorResponse("cache_key is required")
	}

	result := s.backend.Confirm(confirmReq.CacheKey, confirmReq.Confirmed)
	s.controller.HandleResult(result)

	resp, err := NewOKResponse(ResultDataFrom(result))
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleCapture grabs the active monitor and shows the saved path through
// the normal result path.
func (s *Server) handleCapture() *Response {
	if s.capture == nil {
		return NewErrorResponse("capture is not available")
	}

	path, err := s.capture()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Capture failed: %v", err))
	}

	s.controller.HandleResult(bridge.Result{
		Success: true,
		Text:    "Captured " + path,
		Kind:    bridge.KindPlain,
	})

	resp, _ := NewOKResponse(CaptureData{Path: path})
	return resp
}

func (s *Server) handleGetContext() *Response {
	resp, err := NewOKResponse(ContextData{Turns: s.backend.Turns()})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleClearContext() *Response {
	if err := s.backend.ClearContext(); err != nil {
		// The local window is already cleared; the backend failure is
		// still worth reporting.
		return NewErrorResponse(fmt.Sprintf("Context cleared locally; backend clear failed: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetHealth(payload json.RawMessage) *Response {
	var healthReq HealthPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &healthReq); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid health payload: %v", err))
		}
	}

	status := s.backend.Health()
	if healthReq.ProbeNow || status == bridge.HealthUnknown {
		status = s.backend.CheckHealth()
	}

	data := HealthData{
		Status:     status.String(),
		BackendURL: s.backend.BaseURL(),
	}

	if healthReq.Verbose && status == bridge.HealthHealthy {
		if caps, err := s.backend.Capabilities(); err == nil {
			data.Capabilities = caps
		}
		limit := healthReq.LogLimit
		if limit <= 0 {
			limit = 20
		}
		if logs, err := s.backend.Logs(limit); err == nil {
			data.Logs = logs
		}
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
