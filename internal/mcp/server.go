// Package mcp exposes the AI capabilities as Model Context Protocol tools,
// so MCP-speaking clients can call generate/embed/rerank through the same
// failover path as the HTTP API.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/econpulse/econpulse/internal/infra/ai"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for econpulse.
type Server struct {
	svc    *ai.Service
	server *mcp.Server
}

// NewServer creates an MCP server backed by the given AI service.
func NewServer(svc *ai.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("mcp: nil ai service")
	}

	impl := &mcp.Implementation{
		Name:    "econpulse",
		Version: Version,
	}

	s := &Server{
		svc:    svc,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
