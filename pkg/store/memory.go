package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

// Memory is an in-process dataset store. It evaluates the subset of the
// Mongo query language the authorization engine emits ($and, $or, $in,
// equality with array-contains semantics), so engine-narrowed filters behave
// the same as they would against MongoDB.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	dataset Dataset
	raw     bson.M // bson view of the dataset, used by the where matcher
}

// NewMemory creates an empty in-memory dataset store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]memoryDoc)}
}

// Insert stores a dataset document, replacing any existing one with the
// same pid.
func (s *Memory) Insert(ctx context.Context, ds *Dataset) error {
	data, err := bson.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", ds.Pid, err)
	}
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode dataset %s: %w", ds.Pid, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[ds.Pid] = memoryDoc{dataset: *ds, raw: raw}
	return nil
}

// Get retrieves the full dataset document by pid. Returns (nil, nil) when no
// document matches.
func (s *Memory) Get(ctx context.Context, pid string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[pid]
	if !ok {
		return nil, nil
	}
	ds := doc.dataset
	return &ds, nil
}

// FindByPid implements authz.DatasetFetcher.
func (s *Memory) FindByPid(ctx context.Context, pid string) (*authz.DatasetDocument, error) {
	ds, err := s.Get(ctx, pid)
	if err != nil || ds == nil {
		return nil, err
	}
	return ds.PolicyDocument(), nil
}

// FindAll returns the datasets matching the filter's where clause, applying
// its limits.
func (s *Memory) FindAll(ctx context.Context, f authz.Filter) ([]Dataset, error) {
	s.mu.RLock()
	matched := make([]memoryDoc, 0, len(s.docs))
	for _, doc := range s.docs {
		if MatchWhere(doc.raw, f.Where) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	orderField, desc := "pid", false
	if f.Limits != nil && f.Limits.Order != "" {
		field, dir, _ := strings.Cut(f.Limits.Order, ":")
		if field != "" {
			orderField = field
			desc = strings.EqualFold(dir, "desc")
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		less := compareValues(matched[i].raw[orderField], matched[j].raw[orderField]) < 0
		if desc {
			return !less
		}
		return less
	})

	datasets := make([]Dataset, 0, len(matched))
	for _, doc := range matched {
		datasets = append(datasets, doc.dataset)
	}
	if f.Limits != nil {
		if skip := f.Limits.Skip; skip > 0 {
			if skip >= int64(len(datasets)) {
				return []Dataset{}, nil
			}
			datasets = datasets[skip:]
		}
		if limit := f.Limits.Limit; limit > 0 && limit < int64(len(datasets)) {
			datasets = datasets[:limit]
		}
	}
	return datasets, nil
}

// Count returns the number of datasets matching the filter's where clause.
func (s *Memory) Count(ctx context.Context, f authz.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, doc := range s.docs {
		if MatchWhere(doc.raw, f.Where) {
			count++
		}
	}
	return count, nil
}

// MatchWhere evaluates a where clause against a document. It covers the
// operators the authorization engine emits and the plain equality clauses
// callers combine them with; it is not a general Mongo query evaluator.
func MatchWhere(doc bson.M, where bson.M) bool {
	for key, cond := range where {
		switch key {
		case "$and":
			subs, _ := asSlice(cond)
			for _, sub := range subs {
				subWhere, ok := asMap(sub)
				if !ok || !MatchWhere(doc, subWhere) {
					return false
				}
			}
		case "$or":
			matched := false
			subs, _ := asSlice(cond)
			for _, sub := range subs {
				if subWhere, ok := asMap(sub); ok && MatchWhere(doc, subWhere) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		default:
			if !matchField(doc[key], cond) {
				return false
			}
		}
	}
	return true
}

// matchField applies a condition to a single field with Mongo semantics:
// conditions on array fields match when any element matches.
func matchField(value, cond any) bool {
	if condMap, ok := asMap(cond); ok {
		if in, hasIn := condMap["$in"]; hasIn {
			candidates, _ := asSlice(in)
			for _, candidate := range candidates {
				if equalsOrContains(value, candidate) {
					return true
				}
			}
			return false
		}
		// Unsupported operator documents never match; the engine only emits
		// the operators handled above.
		return false
	}
	return equalsOrContains(value, cond)
}

// equalsOrContains reports scalar equality, or membership when the document
// value is an array.
func equalsOrContains(value, candidate any) bool {
	if list, ok := asSlice(value); ok && list != nil {
		for _, element := range list {
			if scalarEqual(element, candidate) {
				return true
			}
		}
		return false
	}
	return scalarEqual(value, candidate)
}

func scalarEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return []any(s), true
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

func asMap(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return bson.M(m), true
	}
	return nil, false
}

func compareValues(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
