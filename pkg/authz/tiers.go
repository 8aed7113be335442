package authz

import "go.mongodb.org/mongo-driver/bson"

// Tier is a visibility scope determining which resource instances a grant
// applies to.
type Tier string

const (
	TierAny          Tier = "any"
	TierAccess       Tier = "access"
	TierOwner        Tier = "owner"
	TierOwnerNoPid   Tier = "owner-no-pid"   // owner tier restricted to payloads without a pid
	TierOwnerWithPid Tier = "owner-with-pid" // owner tier for payloads that declare a pid
	TierPublic       Tier = "public"
)

// tierSpec defines a tier twice over: as an instance-level predicate used by
// the authorization gate, and as the declarative where-clause fragment used
// by the list-filter synthesizer. Keeping both definitions side by side is
// what makes the gate/filter consistency property mechanically checkable.
//
// clause is nil for tiers that never appear in list filters (any short-
// circuits, and the create-only pid tiers have no list semantics).
type tierSpec struct {
	matches func(p Principal, r ResourceInstance) bool
	clause  func(p Principal) bson.M
}

var tierSpecs = map[Tier]tierSpec{
	TierAny: {
		matches: func(Principal, ResourceInstance) bool { return true },
	},

	TierAccess: {
		matches: func(p Principal, r ResourceInstance) bool {
			if containsString(p.CurrentGroups, r.OwnerGroup) {
				return true
			}
			if intersects(p.CurrentGroups, r.AccessGroups) {
				return true
			}
			return p.Email != "" && containsString(r.SharedWith, p.Email)
		},
		clause: func(p Principal) bson.M {
			or := bson.A{
				bson.M{"ownerGroup": bson.M{"$in": p.CurrentGroups}},
				bson.M{"accessGroups": bson.M{"$in": p.CurrentGroups}},
			}
			if p.Email != "" {
				or = append(or, bson.M{"sharedWith": p.Email})
			}
			return bson.M{"$or": or}
		},
	},

	TierOwner: {
		matches: func(p Principal, r ResourceInstance) bool {
			return containsString(p.CurrentGroups, r.OwnerGroup)
		},
		clause: func(p Principal) bson.M {
			return bson.M{"ownerGroup": bson.M{"$in": p.CurrentGroups}}
		},
	},

	TierOwnerNoPid: {
		matches: func(p Principal, r ResourceInstance) bool {
			return r.Pid == "" && containsString(p.CurrentGroups, r.OwnerGroup)
		},
	},

	TierOwnerWithPid: {
		matches: func(p Principal, r ResourceInstance) bool {
			return containsString(p.CurrentGroups, r.OwnerGroup)
		},
	},

	TierPublic: {
		matches: func(p Principal, r ResourceInstance) bool {
			return r.IsPublished
		},
		clause: func(Principal) bson.M {
			return bson.M{"isPublished": true}
		},
	},
}
