package authz

// Action is a fine-grained permission from the closed taxonomy. Each action
// names a resource kind, an operation, and the visibility tier the grant
// applies to.
type Action string

// Action constants, one family per resource kind. Adding a new resource kind
// means adding a new family; existing actions are never overloaded.
const (
	// Datasets
	ActionDatasetCreateAny          Action = "dataset:create:any"
	ActionDatasetCreateOwnerNoPid   Action = "dataset:create:owner-no-pid"
	ActionDatasetCreateOwnerWithPid Action = "dataset:create:owner-with-pid"
	ActionDatasetReadAny            Action = "dataset:read:any"
	ActionDatasetReadAccess         Action = "dataset:read:access"
	ActionDatasetReadOwner          Action = "dataset:read:owner"
	ActionDatasetReadPublic         Action = "dataset:read:public"
	ActionDatasetUpdateAny          Action = "dataset:update:any"
	ActionDatasetUpdateOwner        Action = "dataset:update:owner"
	ActionDatasetDeleteAny          Action = "dataset:delete:any"
	ActionDatasetDeleteOwner        Action = "dataset:delete:owner"

	// Attachments of a dataset
	ActionAttachmentCreateAny    Action = "attachment:create:any"
	ActionAttachmentCreateOwner  Action = "attachment:create:owner"
	ActionAttachmentReadAny      Action = "attachment:read:any"
	ActionAttachmentReadAccess   Action = "attachment:read:access"
	ActionAttachmentReadOwner    Action = "attachment:read:owner"
	ActionAttachmentReadPublic   Action = "attachment:read:public"
	ActionAttachmentUpdateAny    Action = "attachment:update:any"
	ActionAttachmentUpdateOwner  Action = "attachment:update:owner"
	ActionAttachmentDeleteAny    Action = "attachment:delete:any"
	ActionAttachmentDeleteOwner  Action = "attachment:delete:owner"

	// Raw data blocks (origdatablocks) of a dataset
	ActionOrigDatablockCreateAny   Action = "origdatablock:create:any"
	ActionOrigDatablockCreateOwner Action = "origdatablock:create:owner"
	ActionOrigDatablockReadAny     Action = "origdatablock:read:any"
	ActionOrigDatablockReadAccess  Action = "origdatablock:read:access"
	ActionOrigDatablockReadOwner   Action = "origdatablock:read:owner"
	ActionOrigDatablockReadPublic  Action = "origdatablock:read:public"
	ActionOrigDatablockUpdateAny   Action = "origdatablock:update:any"
	ActionOrigDatablockUpdateOwner Action = "origdatablock:update:owner"
	ActionOrigDatablockDeleteAny   Action = "origdatablock:delete:any"
	ActionOrigDatablockDeleteOwner Action = "origdatablock:delete:owner"

	// Processed data blocks (datablocks) of a dataset
	ActionDatablockCreateAny   Action = "datablock:create:any"
	ActionDatablockCreateOwner Action = "datablock:create:owner"
	ActionDatablockReadAny     Action = "datablock:read:any"
	ActionDatablockReadAccess  Action = "datablock:read:access"
	ActionDatablockReadOwner   Action = "datablock:read:owner"
	ActionDatablockReadPublic  Action = "datablock:read:public"
	ActionDatablockUpdateAny   Action = "datablock:update:any"
	ActionDatablockUpdateOwner Action = "datablock:update:owner"
	ActionDatablockDeleteAny   Action = "datablock:delete:any"
	ActionDatablockDeleteOwner Action = "datablock:delete:owner"

	// Logbook of a dataset
	ActionLogbookReadAny   Action = "logbook:read:any"
	ActionLogbookReadOwner Action = "logbook:read:owner"
)

// Operation is an operation family: a (resource kind, operation) pair under
// which tiers are evaluated. Callers request operations; the tier table below
// decides which fine-grained actions apply.
type Operation string

const (
	OpDatasetCreate Operation = "dataset:create"
	OpDatasetRead   Operation = "dataset:read"
	OpDatasetUpdate Operation = "dataset:update"
	OpDatasetDelete Operation = "dataset:delete"

	OpAttachmentCreate Operation = "attachment:create"
	OpAttachmentRead   Operation = "attachment:read"
	OpAttachmentUpdate Operation = "attachment:update"
	OpAttachmentDelete Operation = "attachment:delete"

	OpOrigDatablockCreate Operation = "origdatablock:create"
	OpOrigDatablockRead   Operation = "origdatablock:read"
	OpOrigDatablockUpdate Operation = "origdatablock:update"
	OpOrigDatablockDelete Operation = "origdatablock:delete"

	OpDatablockCreate Operation = "datablock:create"
	OpDatablockRead   Operation = "datablock:read"
	OpDatablockUpdate Operation = "datablock:update"
	OpDatablockDelete Operation = "datablock:delete"

	OpLogbookRead Operation = "logbook:read"
)

// tierRule pairs the fine-grained action a grant set must hold with the
// visibility tier test applied to the target instance.
type tierRule struct {
	Action Action
	Tier   Tier
}

// operationTiers maps every operation family to its tier rules in fixed
// precedence order (any > access > owner > public). Both the authorization
// gate and the list-filter synthesizer walk this table; neither re-derives
// visibility on its own.
var operationTiers = map[Operation][]tierRule{
	OpDatasetCreate: {
		{ActionDatasetCreateAny, TierAny},
		{ActionDatasetCreateOwnerNoPid, TierOwnerNoPid},
		{ActionDatasetCreateOwnerWithPid, TierOwnerWithPid},
	},
	OpDatasetRead: {
		{ActionDatasetReadAny, TierAny},
		{ActionDatasetReadAccess, TierAccess},
		{ActionDatasetReadOwner, TierOwner},
		{ActionDatasetReadPublic, TierPublic},
	},
	OpDatasetUpdate: {
		{ActionDatasetUpdateAny, TierAny},
		{ActionDatasetUpdateOwner, TierOwner},
	},
	OpDatasetDelete: {
		{ActionDatasetDeleteAny, TierAny},
		{ActionDatasetDeleteOwner, TierOwner},
	},

	OpAttachmentCreate: {
		{ActionAttachmentCreateAny, TierAny},
		{ActionAttachmentCreateOwner, TierOwner},
	},
	OpAttachmentRead: {
		{ActionAttachmentReadAny, TierAny},
		{ActionAttachmentReadAccess, TierAccess},
		{ActionAttachmentReadOwner, TierOwner},
		{ActionAttachmentReadPublic, TierPublic},
	},
	OpAttachmentUpdate: {
		{ActionAttachmentUpdateAny, TierAny},
		{ActionAttachmentUpdateOwner, TierOwner},
	},
	OpAttachmentDelete: {
		{ActionAttachmentDeleteAny, TierAny},
		{ActionAttachmentDeleteOwner, TierOwner},
	},

	OpOrigDatablockCreate: {
		{ActionOrigDatablockCreateAny, TierAny},
		{ActionOrigDatablockCreateOwner, TierOwner},
	},
	OpOrigDatablockRead: {
		{ActionOrigDatablockReadAny, TierAny},
		{ActionOrigDatablockReadAccess, TierAccess},
		{ActionOrigDatablockReadOwner, TierOwner},
		{ActionOrigDatablockReadPublic, TierPublic},
	},
	OpOrigDatablockUpdate: {
		{ActionOrigDatablockUpdateAny, TierAny},
		{ActionOrigDatablockUpdateOwner, TierOwner},
	},
	OpOrigDatablockDelete: {
		{ActionOrigDatablockDeleteAny, TierAny},
		{ActionOrigDatablockDeleteOwner, TierOwner},
	},

	OpDatablockCreate: {
		{ActionDatablockCreateAny, TierAny},
		{ActionDatablockCreateOwner, TierOwner},
	},
	OpDatablockRead: {
		{ActionDatablockReadAny, TierAny},
		{ActionDatablockReadAccess, TierAccess},
		{ActionDatablockReadOwner, TierOwner},
		{ActionDatablockReadPublic, TierPublic},
	},
	OpDatablockUpdate: {
		{ActionDatablockUpdateAny, TierAny},
		{ActionDatablockUpdateOwner, TierOwner},
	},
	OpDatablockDelete: {
		{ActionDatablockDeleteAny, TierAny},
		{ActionDatablockDeleteOwner, TierOwner},
	},

	OpLogbookRead: {
		{ActionLogbookReadAny, TierAny},
		{ActionLogbookReadOwner, TierOwner},
	},
}

// validActions is the set of all valid action strings. Unknown actions are
// rejected as programming errors, never silently denied: a typo surfacing as
// Forbidden would mask a bug as a security decision.
var validActions = buildValidActions()

func buildValidActions() map[Action]bool {
	m := make(map[Action]bool, 48)
	for _, rules := range operationTiers {
		for _, r := range rules {
			m[r.Action] = true
		}
	}
	return m
}

// ValidAction reports whether action is part of the closed taxonomy.
func ValidAction(action Action) bool {
	return validActions[action]
}

// ValidOperation reports whether op names a known operation family.
func ValidOperation(op Operation) bool {
	_, ok := operationTiers[op]
	return ok
}

// AllActions returns all valid actions. Useful for documentation, testing,
// and the admin grant rule.
func AllActions() []Action {
	actions := make([]Action, 0, len(validActions))
	for a := range validActions {
		actions = append(actions, a)
	}
	return actions
}
