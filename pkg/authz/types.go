package authz

import "time"

// Principal represents the authenticated caller making a request. The zero
// value is a valid unauthenticated principal. Principals are constructed by
// the authentication layer once per request and passed explicitly to every
// policy call; nothing in this package reads ambient request state.
type Principal struct {
	Username      string   // Unique identity token (e.g., "alice" or "svc_ingestor")
	Email         string   // Used for shared-with matching
	CurrentGroups []string // Group memberships at the time of the request
}

// IsAuthenticated reports whether the principal carries an identity.
func (p Principal) IsAuthenticated() bool {
	return p.Username != ""
}

// MemberOfAny reports whether the principal belongs to at least one of the
// given groups.
func (p Principal) MemberOfAny(groups []string) bool {
	return intersects(p.CurrentGroups, groups)
}

// ResourceInstance is the minimal dataset shape needed for policy checks.
// It is built per request by ProjectDocument and discarded after the
// decision; this package never persists it.
type ResourceInstance struct {
	Pid          string   // Persistent identifier; empty for not-yet-created datasets
	OwnerGroup   string   // Group that owns the dataset
	AccessGroups []string // Groups granted access beyond the owner
	SharedWith   []string // Emails the dataset is shared with
	IsPublished  bool     // Publication flag
}

// Target identifies the resource an authorization check applies to: either a
// persisted dataset addressed by pid, or a not-yet-persisted document (e.g.,
// a creation payload).
type Target struct {
	pid      string
	document *DatasetDocument
}

// TargetPid addresses a persisted dataset by its persistent identifier.
// Resolution goes through the configured DatasetFetcher.
func TargetPid(pid string) Target {
	return Target{pid: pid}
}

// TargetDocument addresses a dataset that is not persisted yet. The document
// is projected directly, without a fetch.
func TargetDocument(doc *DatasetDocument) Target {
	return Target{document: doc}
}

// Decision records the outcome of an authorization check for logging and
// audit. It is not part of the Authorize return value; handlers retrieve it
// via DecisionFromContext when the guard middleware is in use.
type Decision struct {
	Allowed   bool
	Operation Operation     // Operation family that was checked
	Action    Action        // Fine-grained action that granted access (empty on deny)
	Tier      Tier          // Tier that matched (empty on deny)
	Pid       string        // Target instance identifier
	Reason    string        // Human-readable explanation
	Duration  time.Duration // How long the check took
}

// intersects reports whether a and b share at least one element.
func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// containsString reports whether list contains s.
func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
