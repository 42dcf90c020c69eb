package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures are
// logged at warn level. It implements all hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks writing to logger, or to the default logger
// when logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnRenderStart(_ context.Context, workflowID string) {
	h.Logger.Debug("render start", "workflow", workflowID)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, workflowID string, nodeCount, edgeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "workflow", workflowID, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("render complete", "workflow", workflowID, "nodes", nodeCount, "edges", edgeCount, "duration", d)
}

func (h *LogHooks) OnDependenciesStart(_ context.Context, workflowCount int) {
	h.Logger.Debug("dependencies start", "workflows", workflowCount)
}

func (h *LogHooks) OnDependenciesComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("dependencies failed", "duration", d, "err", err)
		return
	}
	h.Logger.Debug("dependencies complete", "nodes", nodeCount, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.Logger.Debug("request", "id", requestID, "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "id", requestID, "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ RenderHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ APIHooks    = (*LogHooks)(nil)
)
