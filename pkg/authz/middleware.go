package authz

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// PrincipalResolver supplies the authenticated principal for a request.
// Token verification is not this package's concern; implementations wrap
// whatever authentication layer the deployment uses. A request without
// credentials resolves to the zero Principal, not an error.
type PrincipalResolver interface {
	ResolvePrincipal(r *http.Request) (Principal, error)
}

// routeKey combines HTTP method and path pattern for lookup.
type routeKey struct {
	method  string
	pattern string
}

// OperationRegistry maps HTTP routes to operation families. Any new endpoint
// must be added to the registry; unknown routes are rejected, never passed
// through.
type OperationRegistry struct {
	routes map[routeKey]Operation
}

// NewOperationRegistry creates a registry with the dataset endpoint
// mappings.
func NewOperationRegistry() *OperationRegistry {
	r := &OperationRegistry{routes: make(map[routeKey]Operation)}

	r.Register("POST", "/api/v4/datasets", OpDatasetCreate)
	r.Register("POST", "/api/v4/datasets/isValid", OpDatasetCreate)
	r.Register("GET", "/api/v4/datasets", OpDatasetRead)
	r.Register("GET", "/api/v4/datasets/fullfacet", OpDatasetRead)
	r.Register("GET", "/api/v4/datasets/metadataKeys", OpDatasetRead)
	r.Register("GET", "/api/v4/datasets/findOne", OpDatasetRead)
	r.Register("GET", "/api/v4/datasets/count", OpDatasetRead)
	r.Register("GET", "/api/v4/datasets/{pid}", OpDatasetRead)
	r.Register("GET", "/api/v4/datasets/{pid}/thumbnail", OpDatasetRead)
	r.Register("PATCH", "/api/v4/datasets/{pid}", OpDatasetUpdate)
	r.Register("PUT", "/api/v4/datasets/{pid}", OpDatasetUpdate)
	r.Register("POST", "/api/v4/datasets/{pid}/appendMetadataField", OpDatasetUpdate)
	r.Register("DELETE", "/api/v4/datasets/{pid}", OpDatasetDelete)

	r.Register("GET", "/api/v4/datasets/{pid}/attachments", OpAttachmentRead)
	r.Register("POST", "/api/v4/datasets/{pid}/attachments", OpAttachmentCreate)
	r.Register("PATCH", "/api/v4/datasets/{pid}/attachments/{id}", OpAttachmentUpdate)
	r.Register("DELETE", "/api/v4/datasets/{pid}/attachments/{id}", OpAttachmentDelete)

	r.Register("GET", "/api/v4/datasets/{pid}/origdatablocks", OpOrigDatablockRead)
	r.Register("POST", "/api/v4/datasets/{pid}/origdatablocks", OpOrigDatablockCreate)
	r.Register("PATCH", "/api/v4/datasets/{pid}/origdatablocks/{id}", OpOrigDatablockUpdate)
	r.Register("DELETE", "/api/v4/datasets/{pid}/origdatablocks/{id}", OpOrigDatablockDelete)

	r.Register("GET", "/api/v4/datasets/{pid}/datablocks", OpDatablockRead)
	r.Register("POST", "/api/v4/datasets/{pid}/datablocks", OpDatablockCreate)
	r.Register("PATCH", "/api/v4/datasets/{pid}/datablocks/{id}", OpDatablockUpdate)
	r.Register("DELETE", "/api/v4/datasets/{pid}/datablocks/{id}", OpDatablockDelete)

	r.Register("GET", "/api/v4/datasets/{pid}/logbook", OpLogbookRead)

	return r
}

// Register adds a route-to-operation mapping.
func (r *OperationRegistry) Register(method, pattern string, op Operation) {
	r.routes[routeKey{method: method, pattern: pattern}] = op
}

// Lookup returns the operation family for a given HTTP method and path.
// Unknown or malformed routes return an error; the guard never falls back
// to a default operation.
func (r *OperationRegistry) Lookup(method, path string) (Operation, error) {
	if path == "" || strings.Contains(path, "//") {
		return "", ErrBadFilter("malformed request path")
	}

	if op, ok := r.routes[routeKey{method: method, pattern: path}]; ok {
		return op, nil
	}
	for key, op := range r.routes {
		if key.method != method {
			continue
		}
		if matchPattern(key.pattern, path) {
			return op, nil
		}
	}
	return "", ErrNotFound(path)
}

// matchPattern checks if a path matches a pattern with {param} placeholders.
func matchPattern(pattern, path string) bool {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i, pp := range patternParts {
		if len(pp) > 2 && pp[0] == '{' && pp[len(pp)-1] == '}' {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		if pp != pathParts[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Guard enforces the endpoint-level policy pre-check on HTTP requests. It
// maps the route to an operation family, resolves the principal, and rejects
// requests whose grant set holds no tier of the family at all. Instance-
// level decisions remain with Authorizer.Authorize inside the handlers,
// which retrieve the principal via PrincipalFromContext.
type Guard struct {
	authorizer *Authorizer
	registry   *OperationRegistry
	principals PrincipalResolver
	logger     *slog.Logger
}

// GuardOption configures the Guard.
type GuardOption func(*Guard)

// WithGuardLogger sets a custom logger for the guard.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = l
	}
}

// NewGuard creates the policy-guard middleware.
func NewGuard(authorizer *Authorizer, registry *OperationRegistry, principals PrincipalResolver, opts ...GuardOption) *Guard {
	g := &Guard{
		authorizer: authorizer,
		registry:   registry,
		principals: principals,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Wrap wraps an HTTP handler with the policy pre-check.
func (g *Guard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, requestID := EnsureRequestID(r.Context())

		op, err := g.registry.Lookup(r.Method, r.URL.Path)
		if err != nil {
			g.logger.Warn("unknown route rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", requestID,
			)
			g.writeError(w, err)
			return
		}

		principal, err := g.principals.ResolvePrincipal(r)
		if err != nil {
			g.logger.Error("principal resolution failed",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", requestID,
			)
			g.writeStatus(w, http.StatusUnauthorized, "auth.invalid_credentials", "authentication failed")
			return
		}

		if !g.authorizer.Ability(principal).CanPerform(op) {
			g.logger.Info("endpoint policy denied",
				"principal", principal.Username,
				"operation", op,
				"request_id", requestID,
			)
			g.writeError(w, ErrForbidden())
			return
		}

		decision := &Decision{
			Allowed:   true,
			Operation: op,
			Reason:    "endpoint policy passed",
			Duration:  time.Since(start),
		}
		ctx = ContextWithPrincipal(ctx, principal)
		ctx = ContextWithDecision(ctx, decision)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeError writes an AuthzError as a JSON response.
func (g *Guard) writeError(w http.ResponseWriter, err error) {
	var status = http.StatusInternalServerError
	var code = "authz.internal"
	message := "internal error"
	if authzErr, ok := err.(*AuthzError); ok {
		status = authzErr.HTTPStatus()
		code = authzErr.Code
		message = authzErr.Message
	}
	g.writeStatus(w, status, code, message)
}

func (g *Guard) writeStatus(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
