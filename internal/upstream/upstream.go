// Package upstream adapts the teacher's MCP client connection helpers
// (internal/service/mcp/util.go: newMcpServerSession,
// createHTTPMcpServerConn, runStdioServer, createSSEMcpServerConn) into the
// default implementation of builtin.ProxyFunction. Dialing an upstream
// server and issuing a tool call is "the actual proxying of a tool call"
// that §1 names as an external collaborator; this package is the one
// concrete adapter wired in by default, swappable behind the
// builtin.ProxyFunction signature.
package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/telemetry"
	"github.com/mcpmux/mcpmux/pkg/types"
	"go.uber.org/zap"
)

// ServerResolver locates the upstream model.McpServer that owns a public
// tool name, by splitting it back into (sanitized server name, tool name)
// and looking the server up within a namespace. Implementations are
// expected to be backed by the store.
type ServerResolver interface {
	ServerForPublicToolName(ctx context.Context, namespaceID uuid.UUID, publicToolName string) (*model.McpServer, string, error)
}

// Dispatcher is the default ProxyFunction implementation: it resolves the
// public tool name to an upstream server, opens a session with it (per the
// server's transport), and invokes the tool.
type Dispatcher struct {
	resolver          ServerResolver
	namespaceID       uuid.UUID
	initReqTimeoutSec int
	metrics           telemetry.CustomMetrics
	logger            *zap.Logger
	sessions          *sessionManager
}

// New returns a Dispatcher bound to namespaceID. initReqTimeoutSec bounds
// the upstream server's initialize handshake, mirroring the teacher's
// MCP_SERVER_INIT_REQ_TIMEOUT_SEC knob. metrics may be nil, in which case
// tool-call outcomes are not recorded.
func New(
	resolver ServerResolver, namespaceID uuid.UUID, initReqTimeoutSec int, metrics telemetry.CustomMetrics, logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopCustomMetrics()
	}
	if initReqTimeoutSec <= 0 {
		initReqTimeoutSec = 10
	}
	return &Dispatcher{
		resolver:          resolver,
		namespaceID:       namespaceID,
		initReqTimeoutSec: initReqTimeoutSec,
		metrics:           metrics,
		logger:            logger,
		sessions:          newSessionManager(),
	}
}

// Close shuts down every connection the Dispatcher has pooled for stateful
// upstream servers.
func (d *Dispatcher) Close() error {
	return d.sessions.Close()
}

// Proxy matches the builtin.ProxyFunction signature. Mirrors the teacher's
// InvokeTool: once the tool name resolves to a server, it records a
// RecordToolCall outcome on return, success or error, via the deferred
// closure pattern. A tool name that does not resolve returns an error
// without recording an outcome.
func (d *Dispatcher) Proxy(ctx context.Context, toolName string, args map[string]any) (*types.ToolInvokeResult, error) {
	started := time.Now()
	outcome := telemetry.ToolCallOutcomeError

	server, upstreamToolName, err := d.resolver.ServerForPublicToolName(ctx, d.namespaceID, toolName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upstream server for tool %s: %w", toolName, err)
	}

	defer func() {
		d.metrics.RecordToolCall(ctx, server.Name, upstreamToolName, outcome, time.Since(started))
	}()

	session, pooled, err := d.sessions.acquire(ctx, server, d.initReqTimeoutSec)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to upstream server %s: %w", server.Name, err)
	}
	if !pooled {
		defer session.Close()
	}

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = upstreamToolName
	callReq.Params.Arguments = args

	res, err := session.CallTool(ctx, callReq)
	if err != nil {
		if pooled {
			// the pooled connection may be dead; drop it so the next call
			// against this server redials instead of failing forever.
			d.sessions.evict(server.ID)
		}
		return nil, fmt.Errorf("upstream call to %s failed: %w", toolName, err)
	}

	outcome = telemetry.ToolCallOutcomeSuccess
	return convertToolCallResult(res), nil
}

// SplitPublicToolName mirrors the teacher's splitServerToolName, reused by
// ServerResolver implementations to recover (sanitized server name, tool
// name) from a public tool name.
func SplitPublicToolName(publicName string) (sanitizedServerName, toolName string, ok bool) {
	return splitOnSeparator(publicName)
}

func splitOnSeparator(name string) (string, string, bool) {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == '_' && name[i+1] == '_' {
			return name[:i], name[i+2:], true
		}
	}
	return "", "", false
}
