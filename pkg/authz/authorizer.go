package authz

import (
	"context"
	"log/slog"
	"time"
)

// Authorizer evaluates the per-operation tier table against principal grant
// sets. All instance-level decisions and all list-filter narrowing in the
// system flow through this single component.
type Authorizer struct {
	groups  Groups
	fetcher DatasetFetcher
	logger  *slog.Logger
	audit   AuditLogger
}

// NewAuthorizer creates an authorizer with the given configuration.
func NewAuthorizer(cfg Config) (*Authorizer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	groupsData := cfg.GroupsYAML
	if groupsData == nil {
		groupsData = defaultGroupsYAML
	}
	groups, err := ParseGroups(groupsData)
	if err != nil {
		return nil, err
	}

	return &Authorizer{
		groups:  groups,
		fetcher: cfg.Fetcher,
		logger:  logger,
		audit:   cfg.Audit,
	}, nil
}

// Authorize decides whether the principal may perform the operation on the
// target dataset. The target is resolved first (by pid through the fetcher,
// or by projecting a supplied payload), then the operation's tiers are
// evaluated in precedence order; the first granted tier whose visibility
// test matches the instance permits the operation.
//
// On success the resolved instance is returned for the caller to proceed
// with. Failure modes: NotFound when a pid resolves to nothing, Unavailable
// when the fetch itself fails, UnknownAction for an operation outside the
// taxonomy, and a uniform Forbidden when no granted tier matches.
func (a *Authorizer) Authorize(ctx context.Context, p Principal, op Operation, target Target) (ResourceInstance, error) {
	start := time.Now()

	rules, ok := operationTiers[op]
	if !ok {
		return ResourceInstance{}, ErrUnknownOperation(string(op))
	}

	inst, err := a.resolve(ctx, target)
	if err != nil {
		return ResourceInstance{}, err
	}

	ability := a.Ability(p)

	for _, r := range rules {
		if !ability.Can(r.Action) {
			continue
		}
		if !tierSpecs[r.Tier].matches(p, inst) {
			continue
		}
		decision := Decision{
			Allowed:   true,
			Operation: op,
			Action:    r.Action,
			Tier:      r.Tier,
			Pid:       inst.Pid,
			Reason:    "access permitted",
			Duration:  time.Since(start),
		}
		a.logDecision(ctx, p, decision)
		return inst, nil
	}

	decision := Decision{
		Allowed:   false,
		Operation: op,
		Pid:       inst.Pid,
		Reason:    "no granted tier matches the instance",
		Duration:  time.Since(start),
	}
	a.logDecision(ctx, p, decision)
	return ResourceInstance{}, ErrForbidden()
}

// resolve produces the resource instance for a target. Only pid targets
// touch the persistence collaborator; the engine performs no retries and
// mutates nothing.
func (a *Authorizer) resolve(ctx context.Context, target Target) (ResourceInstance, error) {
	if target.document != nil {
		return ProjectDocument(target.document), nil
	}
	if target.pid == "" {
		return ResourceInstance{}, ErrNotFound(target.pid)
	}
	if a.fetcher == nil {
		return ResourceInstance{}, ErrUnavailable(nil)
	}
	doc, err := a.fetcher.FindByPid(ctx, target.pid)
	if err != nil {
		return ResourceInstance{}, ErrUnavailable(err)
	}
	if doc == nil {
		return ResourceInstance{}, ErrNotFound(target.pid)
	}
	return ProjectDocument(doc), nil
}

// logDecision writes the decision to the structured logger and, when
// configured, to the audit sink.
func (a *Authorizer) logDecision(ctx context.Context, p Principal, d Decision) {
	a.logger.Info("authorization decision",
		"principal", p.Username,
		"groups", p.CurrentGroups,
		"operation", d.Operation,
		"action", d.Action,
		"tier", d.Tier,
		"pid", d.Pid,
		"decision", d.Allowed,
		"reason", d.Reason,
		"duration_us", d.Duration.Microseconds(),
	)

	if a.audit == nil {
		return
	}
	entry := AuditEntry{
		Timestamp:  time.Now().UTC(),
		RequestID:  RequestIDFromContext(ctx),
		Principal:  p.Username,
		Email:      p.Email,
		Groups:     p.CurrentGroups,
		Operation:  string(d.Operation),
		Action:     string(d.Action),
		Tier:       string(d.Tier),
		Pid:        d.Pid,
		Decision:   decisionLabel(d.Allowed),
		Reason:     d.Reason,
		DurationUS: d.Duration.Microseconds(),
	}
	if err := a.audit.LogDecision(ctx, entry); err != nil {
		a.logger.Error("audit log write failed", "error", err)
	}
}

func decisionLabel(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
