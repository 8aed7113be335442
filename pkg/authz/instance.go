package authz

import "context"

// DatasetDocument is the slice of the dataset schema this engine reads: the
// five policy-relevant fields and nothing else. Persistence collaborators
// project their full documents into this shape, so catalog schema evolution
// cannot silently change authorization behavior. Creation payloads use the
// same shape before anything is persisted.
type DatasetDocument struct {
	Pid          string   `json:"pid" bson:"pid"`
	OwnerGroup   string   `json:"ownerGroup" bson:"ownerGroup"`
	AccessGroups []string `json:"accessGroups" bson:"accessGroups"`
	SharedWith   []string `json:"sharedWith" bson:"sharedWith"`
	IsPublished  bool     `json:"isPublished" bson:"isPublished"`
}

// DatasetFetcher resolves dataset documents by persistent identifier. It is
// the engine's only persistence collaborator and is used solely by pid
// resolution inside Authorize.
//
// Implementations return (nil, nil) when the pid resolves to nothing. Fetch
// calls must be cancellable through the context and have no side effects on
// authorization state; deadline enforcement belongs to the surrounding
// request pipeline.
type DatasetFetcher interface {
	FindByPid(ctx context.Context, pid string) (*DatasetDocument, error)
}

// ProjectDocument constructs the minimal resource instance used for policy
// evaluation from a persisted document or a creation payload. Access groups
// and shared-with default to empty sets, the publication flag to false, and
// the identifier to the empty string when absent.
func ProjectDocument(doc *DatasetDocument) ResourceInstance {
	inst := ResourceInstance{
		Pid:          doc.Pid,
		OwnerGroup:   doc.OwnerGroup,
		AccessGroups: doc.AccessGroups,
		SharedWith:   doc.SharedWith,
		IsPublished:  doc.IsPublished,
	}
	if inst.AccessGroups == nil {
		inst.AccessGroups = []string{}
	}
	if inst.SharedWith == nil {
		inst.SharedWith = []string{}
	}
	return inst
}
