package authz

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Filter is the declarative query shape accepted by list, count, and facet
// entry points. Where clauses use the document store's operator vocabulary
// ($and, $or, $in, equality); this engine builds and merges them but never
// executes them.
type Filter struct {
	Where   bson.M   `json:"where,omitempty"`
	Fields  bson.M   `json:"fields,omitempty"`
	Include []string `json:"include,omitempty"`
	Limits  *Limits  `json:"limits,omitempty"`
}

// Limits carries pagination and ordering.
type Limits struct {
	Skip  int64  `json:"skip,omitempty"`
	Limit int64  `json:"limit,omitempty"`
	Order string `json:"order,omitempty"` // "field:asc" or "field:desc"
}

// DatasetRelations is the closed set of relations a filter may include.
var DatasetRelations = map[string]bool{
	"instruments":    true,
	"attachments":    true,
	"origdatablocks": true,
	"datablocks":     true,
	"proposals":      true,
	"samples":        true,
}

// ParseFilter decodes a raw JSON filter. An empty string yields the zero
// filter.
func ParseFilter(raw string) (Filter, error) {
	if raw == "" {
		return Filter{}, nil
	}
	var f Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Filter{}, ErrBadFilter(fmt.Sprintf("malformed filter: %v", err))
	}
	if err := f.validateInclude(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// FilterFromSources resolves the raw filter for a list request. Exactly one
// of the query-parameter filter and the header filter may be present; both
// present is a hard error, never silently resolved by precedence.
func FilterFromSources(queryFilter, headerFilter string) (Filter, error) {
	if queryFilter != "" && headerFilter != "" {
		return Filter{}, ErrFilterConflict()
	}
	if queryFilter != "" {
		return ParseFilter(queryFilter)
	}
	return ParseFilter(headerFilter)
}

// validateInclude checks requested relations against the closed set.
func (f Filter) validateInclude() error {
	for _, relation := range f.Include {
		if !DatasetRelations[relation] {
			return ErrBadFilter(fmt.Sprintf("provided include field %q is not part of the dataset relations", relation))
		}
	}
	return nil
}

// NarrowFilter rewrites a caller-supplied filter so that it can only match
// datasets the principal is allowed to read: the visibility clauses of the
// granted tiers are ORed together and ANDed into the caller's where clause.
// A principal granted the any tier gets the filter back unmodified. A
// principal granted no tier for the family gets a filter that matches
// nothing.
//
// The clauses come from the same tier table Authorize evaluates, which is
// what guarantees that a dataset appears in a narrowed list result exactly
// when the single-item check for it would succeed.
func (a *Authorizer) NarrowFilter(p Principal, op Operation, f Filter) (Filter, error) {
	rules, ok := operationTiers[op]
	if !ok {
		return Filter{}, ErrUnknownOperation(string(op))
	}

	ability := a.Ability(p)

	var clauses bson.A
	for _, r := range rules {
		if !ability.Can(r.Action) {
			continue
		}
		if r.Tier == TierAny {
			return f, nil
		}
		spec := tierSpecs[r.Tier]
		if spec.clause == nil {
			continue
		}
		clauses = append(clauses, spec.clause(p))
	}

	var visibility bson.M
	switch len(clauses) {
	case 0:
		// No tier granted for this family: match nothing.
		visibility = bson.M{"pid": bson.M{"$in": bson.A{}}}
	case 1:
		visibility = clauses[0].(bson.M)
	default:
		visibility = bson.M{"$or": clauses}
	}

	narrowed := f
	if len(f.Where) == 0 {
		narrowed.Where = visibility
	} else {
		narrowed.Where = bson.M{"$and": bson.A{f.Where, visibility}}
	}
	return narrowed, nil
}

// NarrowFacetFields applies dataset read visibility to the facet "fields"
// shape used by the fullfacet and metadata-keys entry points. The tiers are
// the same as NarrowFilter's; only the rendering differs, because facet
// queries constrain by field lists instead of where clauses. A caller that
// already restricts itself to published datasets is left untouched.
func (a *Authorizer) NarrowFacetFields(p Principal, fields bson.M) bson.M {
	ability := a.Ability(p)
	if ability.Can(ActionDatasetReadAny) {
		return fields
	}
	if isPublished, ok := fields["isPublished"].(bool); ok && isPublished {
		return fields
	}

	narrowed := make(bson.M, len(fields)+1)
	for k, v := range fields {
		narrowed[k] = v
	}

	switch {
	case ability.Can(ActionDatasetReadAccess):
		narrowed["userGroups"] = appendGroups(narrowed["userGroups"], p.CurrentGroups)
	case ability.Can(ActionDatasetReadOwner):
		narrowed["ownerGroup"] = appendGroups(narrowed["ownerGroup"], p.CurrentGroups)
	default:
		narrowed["isPublished"] = true
	}
	return narrowed
}

// appendGroups appends groups to a field value that may be absent, a JSON
// string array, or a native string slice.
func appendGroups(value any, groups []string) []string {
	var out []string
	switch v := value.(type) {
	case []string:
		out = append(out, v...)
	case bson.A:
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return append(out, groups...)
}
