package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

// TestNarrowedFiltersMatchInstanceDecisions exercises the core guarantee of
// the engine: a dataset appears in a list narrowed by NarrowFilter exactly
// when Authorize permits reading that dataset directly. Memory evaluates the
// narrowed where clauses with Mongo semantics, so the list side of the
// equivalence runs against real filter documents rather than a mock.
func TestNarrowedFiltersMatchInstanceDecisions(t *testing.T) {
	t.Parallel()

	datasets := []*Dataset{
		testDataset("ds-private", func(d *Dataset) {
			d.AccessGroups = nil
		}),
		testDataset("ds-published", func(d *Dataset) {
			d.AccessGroups = nil
			d.IsPublished = true
		}),
		testDataset("ds-access", func(d *Dataset) {
			d.AccessGroups = []string{"beamlineX", "beamlineY"}
		}),
		testDataset("ds-shared", func(d *Dataset) {
			d.AccessGroups = nil
			d.SharedWith = []string{"carol@example.org"}
		}),
		testDataset("ds-foreign", func(d *Dataset) {
			d.OwnerGroup = "labZ"
			d.AccessGroups = nil
		}),
		testDataset("ds-foreign-published", func(d *Dataset) {
			d.OwnerGroup = "labZ"
			d.AccessGroups = nil
			d.IsPublished = true
		}),
	}
	mem := seedMemory(t, datasets...)

	principals := []struct {
		name      string
		principal authz.Principal
	}{
		{"anonymous", authz.Principal{}},
		{"owner", authz.Principal{
			Username: "alice", Email: "alice@example.org",
			CurrentGroups: []string{"labA"},
		}},
		{"access-member", authz.Principal{
			Username: "bob", Email: "bob@example.org",
			CurrentGroups: []string{"beamlineY"},
		}},
		{"shared-recipient", authz.Principal{
			Username: "carol", Email: "carol@example.org",
			CurrentGroups: []string{"unrelated"},
		}},
		{"outsider", authz.Principal{
			Username: "dave", Email: "dave@example.org",
			CurrentGroups: []string{"labQ"},
		}},
		{"admin", authz.Principal{
			Username: "root", Email: "root@example.org",
			CurrentGroups: []string{"admin"},
		}},
		{"no-email-outsider", authz.Principal{
			Username:      "eve",
			CurrentGroups: []string{"labQ"},
		}},
	}

	operations := []authz.Operation{
		authz.OpDatasetRead,
		authz.OpAttachmentRead,
		authz.OpOrigDatablockRead,
		authz.OpDatablockRead,
		authz.OpLogbookRead,
	}

	engine, err := authz.NewAuthorizer(authz.Config{
		Fetcher: mem,
		Audit:   authz.NopAuditLogger{},
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, pc := range principals {
		for _, op := range operations {
			narrowed, err := engine.NarrowFilter(pc.principal, op, authz.Filter{})
			require.NoError(t, err, "%s/%s", pc.name, op)

			listed, err := mem.FindAll(ctx, narrowed)
			require.NoError(t, err, "%s/%s", pc.name, op)
			visible := make(map[string]bool, len(listed))
			for _, ds := range listed {
				visible[ds.Pid] = true
			}

			for _, ds := range datasets {
				_, authErr := engine.Authorize(ctx, pc.principal, op, authz.TargetPid(ds.Pid))
				allowed := authErr == nil
				if allowed != visible[ds.Pid] {
					t.Errorf("%s on %s of %s: Authorize allowed=%v but narrowed list contains=%v (where=%v)",
						pc.name, op, ds.Pid, allowed, visible[ds.Pid], narrowed.Where)
				}
			}
		}
	}
}

// TestNarrowedFilterPreservesCallerClauses checks that narrowing combines
// with, rather than replaces, the caller's own where clause.
func TestNarrowedFilterPreservesCallerClauses(t *testing.T) {
	t.Parallel()

	mem := seedMemory(t,
		testDataset("ds-raw", func(d *Dataset) { d.Type = "raw"; d.IsPublished = true }),
		testDataset("ds-derived", func(d *Dataset) { d.Type = "derived"; d.IsPublished = true }),
		testDataset("ds-raw-private", func(d *Dataset) {
			d.Type = "raw"
			d.OwnerGroup = "labZ"
			d.AccessGroups = nil
		}),
	)

	engine, err := authz.NewAuthorizer(authz.Config{
		Fetcher: mem,
		Audit:   authz.NopAuditLogger{},
	})
	require.NoError(t, err)

	caller, err := authz.ParseFilter(`{"where": {"type": "raw"}}`)
	require.NoError(t, err)

	narrowed, err := engine.NarrowFilter(authz.Principal{}, authz.OpDatasetRead, caller)
	require.NoError(t, err)

	out, err := mem.FindAll(context.Background(), narrowed)
	require.NoError(t, err)
	require.Len(t, out, 1, "only the published raw dataset is visible")
	require.Equal(t, "ds-raw", out[0].Pid)
}
