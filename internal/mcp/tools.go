package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/glance/internal/ipc"
)

func (s *Server) handleToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	if err := s.client.Toggle(); err != nil {
		return nil, ToggleOutput{}, fmt.Errorf("toggle overlay: %w", err)
	}

	// Report the state the toggle landed in.
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ToggleOutput{}, fmt.Errorf("read overlay status: %w", err)
	}
	return nil, ToggleOutput{
		State:   status.Overlay.State,
		Visible: status.Overlay.Visible,
	}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("read overlay status: %w", err)
	}
	return nil, StatusOutput{
		State:         status.Overlay.State,
		Visible:       status.Overlay.Visible,
		TimerPending:  status.Overlay.TimerPending,
		CommandActive: status.Overlay.CommandActive,
		BackendURL:    status.BackendURL,
		BackendHealth: status.BackendHealth,
		TurnCount:     status.TurnCount,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleSend(_ context.Context, _ *mcpsdk.CallToolRequest, args SendInput) (*mcpsdk.CallToolResult, SendOutput, error) {
	var (
		result *ipc.ResultData
		err    error
	)
	switch {
	case args.CacheKey != "":
		if args.Confirm == nil {
			return nil, SendOutput{}, fmt.Errorf("confirm is required with cache_key")
		}
		result, err = s.client.Confirm(args.CacheKey, *args.Confirm)
	case args.Command != "":
		result, err = s.client.Send(args.Command)
	default:
		return nil, SendOutput{}, fmt.Errorf("either command or cache_key is required")
	}
	if err != nil {
		return nil, SendOutput{}, fmt.Errorf("send command: %w", err)
	}

	return nil, SendOutput{
		Success:              result.Success,
		Result:               result.Result,
		Kind:                 result.Kind,
		Remedy:               result.Remedy,
		RequiresConfirmation: result.RequiresConfirmation,
		CacheKey:             result.CacheKey,
	}, nil
}

func (s *Server) handleContext(_ context.Context, _ *mcpsdk.CallToolRequest, args ContextInput) (*mcpsdk.CallToolResult, ContextOutput, error) {
	if args.Clear {
		if err := s.client.ClearContext(); err != nil {
			return nil, ContextOutput{}, fmt.Errorf("clear context: %w", err)
		}
		return nil, ContextOutput{Cleared: true}, nil
	}

	data, err := s.client.GetContext()
	if err != nil {
		return nil, ContextOutput{}, fmt.Errorf("read context: %w", err)
	}
	turns := make([]ContextTurn, 0, len(data.Turns))
	for _, t := range data.Turns {
		turns = append(turns, ContextTurn{
			Command: t.Command,
			Result:  t.Result,
			Success: t.Success,
		})
	}
	return nil, ContextOutput{Turns: turns}, nil
}

func (s *Server) handleCapture(_ context.Context, _ *mcpsdk.CallToolRequest, _ CaptureInput) (*mcpsdk.CallToolResult, CaptureOutput, error) {
	data, err := s.client.Capture()
	if err != nil {
		return nil, CaptureOutput{}, fmt.Errorf("capture screenshot: %w", err)
	}
	return nil, CaptureOutput{Path: data.Path}, nil
}
