package authz

// Ability is the grant set of a principal: the fine-grained actions it holds
// unconditionally for the duration of one request. It is a pure function of
// the principal and the static group configuration; grant sets are unions,
// so adding a group to a principal can only widen its ability.
type Ability struct {
	actions map[Action]struct{}
}

// Can reports whether the grant set holds the given action.
func (ab Ability) Can(action Action) bool {
	_, ok := ab.actions[action]
	return ok
}

// CanPerform reports whether the grant set holds at least one tier of the
// operation family. The guard middleware uses this as the endpoint-level
// pre-check; the instance-level decision stays with Authorize.
func (ab Ability) CanPerform(op Operation) bool {
	for _, r := range operationTiers[op] {
		if ab.Can(r.Action) {
			return true
		}
	}
	return false
}

// ruleScope selects which principals a grant rule applies to.
type ruleScope int

const (
	scopeEveryone      ruleScope = iota // authenticated or not
	scopeAuthenticated                  // any authenticated principal
	scopeGroups                         // membership in a configured group list
)

// grantRule maps a principal pattern to the actions it grants. The rule
// table is evaluated as a union: every matching rule contributes its
// actions, and no rule ever removes one.
type grantRule struct {
	scope   ruleScope
	groups  func(Groups) []string // only for scopeGroups
	actions []Action
}

var publicReadActions = []Action{
	ActionDatasetReadPublic,
	ActionAttachmentReadPublic,
	ActionOrigDatablockReadPublic,
	ActionDatablockReadPublic,
}

var authenticatedReadActions = []Action{
	ActionDatasetReadAccess,
	ActionDatasetReadOwner,
	ActionAttachmentReadAccess,
	ActionAttachmentReadOwner,
	ActionOrigDatablockReadAccess,
	ActionOrigDatablockReadOwner,
	ActionDatablockReadAccess,
	ActionDatablockReadOwner,
	ActionLogbookReadOwner,
}

var ownerWriteActions = []Action{
	ActionDatasetCreateOwnerNoPid,
	ActionDatasetUpdateOwner,
	ActionAttachmentCreateOwner,
	ActionAttachmentUpdateOwner,
	ActionAttachmentDeleteOwner,
	ActionOrigDatablockCreateOwner,
	ActionOrigDatablockUpdateOwner,
	ActionOrigDatablockDeleteOwner,
	ActionDatablockCreateOwner,
	ActionDatablockUpdateOwner,
	ActionDatablockDeleteOwner,
}

var deleteAnyActions = []Action{
	ActionDatasetDeleteAny,
	ActionAttachmentDeleteAny,
	ActionOrigDatablockDeleteAny,
	ActionDatablockDeleteAny,
}

// grantRules is the static rule table driving Ability. Order is irrelevant;
// rules accumulate.
var grantRules = []grantRule{
	{scope: scopeEveryone, actions: publicReadActions},
	{scope: scopeAuthenticated, actions: authenticatedReadActions},
	{
		scope:   scopeGroups,
		groups:  func(g Groups) []string { return g.CreateDataset },
		actions: ownerWriteActions,
	},
	{
		scope:   scopeGroups,
		groups:  func(g Groups) []string { return g.CreateDatasetWithPid },
		actions: []Action{ActionDatasetCreateOwnerWithPid},
	},
	{
		scope:   scopeGroups,
		groups:  func(g Groups) []string { return g.CreateDatasetPrivileged },
		actions: []Action{ActionDatasetCreateAny},
	},
	{
		scope:   scopeGroups,
		groups:  func(g Groups) []string { return g.Delete },
		actions: deleteAnyActions,
	},
	{
		scope:   scopeGroups,
		groups:  func(g Groups) []string { return g.Admin },
		actions: AllActions(),
	},
}

// Ability computes the grant set for a principal. Pure, deterministic, and
// total: an unauthenticated principal yields the public-only grant set and
// no principal ever causes an error.
func (a *Authorizer) Ability(p Principal) Ability {
	grants := make(map[Action]struct{})
	for _, rule := range grantRules {
		switch rule.scope {
		case scopeEveryone:
			// Always applies.
		case scopeAuthenticated:
			if !p.IsAuthenticated() {
				continue
			}
		case scopeGroups:
			if !p.IsAuthenticated() || !p.MemberOfAny(rule.groups(a.groups)) {
				continue
			}
		}
		for _, action := range rule.actions {
			grants[action] = struct{}{}
		}
	}
	return Ability{actions: grants}
}
