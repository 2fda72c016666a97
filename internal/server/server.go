// Package server exposes the interactive_feedback MCP tool over stdio.
// Each call launches the feedback UI as a child process and relays the
// result back to the calling agent.
package server

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/airsulG/interactive-feedback-magic/internal/config"
	"github.com/airsulG/interactive-feedback-magic/internal/exchange"
	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
	"github.com/airsulG/interactive-feedback-magic/internal/logging"
	"github.com/airsulG/interactive-feedback-magic/internal/store"
)

const (
	serverName    = "interactive-feedback-magic"
	serverVersion = "1.0.0"
)

// FeedbackArgs is the tool input schema.
type FeedbackArgs struct {
	Message           string   `json:"message" jsonschema:"The question or request to show the user"`
	PredefinedOptions []string `json:"predefined_options,omitempty" jsonschema:"Optional selectable answers shown alongside free text"`
	ContextInfo       string   `json:"context_info,omitempty" jsonschema:"Optional project context passed to prompt enhancement"`
}

// launchFunc matches exchange.Launch; injectable so tests can fake the UI.
type launchFunc func(ctx context.Context, opts exchange.LaunchOptions) (feedback.FeedbackResult, error)

// Server wires the MCP tool surface to the result exchange channel.
type Server struct {
	cfg     config.Config
	history *store.HistoryStore
	launch  launchFunc
}

// New creates the server. history may be nil (recording disabled).
func New(cfg config.Config, history *store.HistoryStore) *Server {
	return &Server{cfg: cfg, history: history, launch: exchange.Launch}
}

// Run serves MCP over stdio until the context ends or the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(srv, &mcp.Tool{
		Name: "interactive_feedback",
		Description: "Ask the human operator for feedback. Shows a terminal form with the " +
			"given message, optional predefined options, free-text input and image attachments, " +
			"and returns what the user submitted plus a session control directive.",
	}, s.handleInteractiveFeedback)

	logging.L().Info("MCP server listening on stdio",
		zap.String("name", serverName),
		zap.String("version", serverVersion))
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleInteractiveFeedback(ctx context.Context, req *mcp.CallToolRequest, args FeedbackArgs) (*mcp.CallToolResult, any, error) {
	logging.L().Info("interactive_feedback called",
		zap.Int("options", len(args.PredefinedOptions)),
		zap.Bool("has_context", args.ContextInfo != ""))

	result, err := s.launch(ctx, exchange.LaunchOptions{
		Prompt:            args.Message,
		PredefinedOptions: args.PredefinedOptions,
		ContextInfo:       args.ContextInfo,
		DisableImages:     !s.cfg.Images.Enabled,
	})
	if err != nil {
		// Boundary failures propagate; there is no silent retry.
		logging.L().Error("feedback interaction failed", zap.Error(err))
		return nil, nil, err
	}

	s.record(args.Message, result)

	return &mcp.CallToolResult{Content: BuildContent(result)}, nil, nil
}

// BuildContent converts a FeedbackResult into MCP content: the feedback
// text with the session directive appended as a trailing annotation, then
// one image block per decodable attachment. A payload that fails to decode
// is skipped without aborting the call or the other images.
func BuildContent(result feedback.FeedbackResult) []mcp.Content {
	text := fmt.Sprintf("%s\n\n[会话控制: %s]", result.InteractiveFeedback, result.SessionControl)
	content := []mcp.Content{&mcp.TextContent{Text: text}}

	for i, img := range result.Images {
		raw, err := base64.StdEncoding.DecodeString(img.BytesBase64)
		if err != nil {
			logging.L().Warn("skipping undecodable image attachment",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		content = append(content, &mcp.ImageContent{Data: raw, MIMEType: mime})
	}
	return content
}

func (s *Server) record(prompt string, result feedback.FeedbackResult) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(prompt, result); err != nil {
		logging.L().Warn("failed to record feedback history", zap.Error(err))
	}
}
