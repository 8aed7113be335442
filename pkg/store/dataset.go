package store

import (
	"time"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

// Dataset is the persisted catalog document. The authorization engine never
// sees this type; it receives the policy projection via PolicyDocument.
type Dataset struct {
	Pid                string         `bson:"pid" json:"pid"`
	DatasetName        string         `bson:"datasetName" json:"datasetName"`
	Type               string         `bson:"type" json:"type"` // "raw" or "derived"
	Owner              string         `bson:"owner" json:"owner"`
	OwnerEmail         string         `bson:"ownerEmail,omitempty" json:"ownerEmail,omitempty"`
	ContactEmail       string         `bson:"contactEmail" json:"contactEmail"`
	OwnerGroup         string         `bson:"ownerGroup" json:"ownerGroup"`
	AccessGroups       []string       `bson:"accessGroups" json:"accessGroups"`
	SharedWith         []string       `bson:"sharedWith,omitempty" json:"sharedWith,omitempty"`
	IsPublished        bool           `bson:"isPublished" json:"isPublished"`
	SourceFolder       string         `bson:"sourceFolder" json:"sourceFolder"`
	Size               int64          `bson:"size" json:"size"`
	CreationTime       time.Time      `bson:"creationTime" json:"creationTime"`
	Keywords           []string       `bson:"keywords,omitempty" json:"keywords,omitempty"`
	ProposalIds        []string       `bson:"proposalIds,omitempty" json:"proposalIds,omitempty"`
	ScientificMetadata map[string]any `bson:"scientificMetadata,omitempty" json:"scientificMetadata,omitempty"`
}

// PolicyDocument projects the dataset into the shape the authorization
// engine reads.
func (d *Dataset) PolicyDocument() *authz.DatasetDocument {
	return &authz.DatasetDocument{
		Pid:          d.Pid,
		OwnerGroup:   d.OwnerGroup,
		AccessGroups: d.AccessGroups,
		SharedWith:   d.SharedWith,
		IsPublished:  d.IsPublished,
	}
}
