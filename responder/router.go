package responder

import (
	"context"
	"sync"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
)

// RouterOptions configure a Router.
type RouterOptions struct {
	Logger logging.Logger
}

// Router dispatches to the responder registered for the session's model and
// falls back to a default responder for unregistered models. A failing model
// responder is also answered by the fallback so the user always gets a reply.
type Router struct {
	mu       sync.RWMutex
	routes   map[string]core.Responder
	fallback core.Responder
	logger   logging.Logger
}

// NewRouter creates a router with the given fallback.
func NewRouter(fallback core.Responder, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{routes: map[string]core.Responder{}, fallback: fallback, logger: opts.Logger}
}

// Route registers r for model.
func (rt *Router) Route(model string, r core.Responder) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes[model] = r
}

// Respond implements core.Responder.
func (rt *Router) Respond(ctx context.Context, conv core.ConversationContext) (string, error) {
	rt.mu.RLock()
	r, ok := rt.routes[conv.Model]
	rt.mu.RUnlock()
	if !ok {
		return rt.fallback.Respond(ctx, conv)
	}
	reply, err := r.Respond(ctx, conv)
	if err == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	rt.logger.Warn("responder.fallback", "model", conv.Model, "error", err.Error())
	return rt.fallback.Respond(ctx, conv)
}
