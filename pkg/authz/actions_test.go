package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyIsClosed(t *testing.T) {
	t.Parallel()

	for _, action := range AllActions() {
		assert.True(t, ValidAction(action), "action %q should be valid", action)
	}

	assert.False(t, ValidAction("dataset:read"), "operation names are not actions")
	assert.False(t, ValidAction("dataset:read:shared"), "unknown tier")
	assert.False(t, ValidAction(""), "empty action")
}

func TestOperationTiersPrecedence(t *testing.T) {
	t.Parallel()

	for op, rules := range operationTiers {
		require.NotEmpty(t, rules, "operation %q has no tier rules", op)
		assert.Equal(t, TierAny, rules[0].Tier,
			"operation %q must evaluate the any tier first", op)

		for _, r := range rules {
			_, known := tierSpecs[r.Tier]
			assert.True(t, known, "operation %q references unknown tier %q", op, r.Tier)
			assert.True(t, ValidAction(r.Action),
				"operation %q references unknown action %q", op, r.Action)
		}
	}
}

func TestReadFamiliesCarryPublicTier(t *testing.T) {
	t.Parallel()

	withPublic := []Operation{OpDatasetRead, OpAttachmentRead, OpOrigDatablockRead, OpDatablockRead}
	for _, op := range withPublic {
		found := false
		for _, r := range operationTiers[op] {
			if r.Tier == TierPublic {
				found = true
			}
		}
		assert.True(t, found, "read family %q should have a public tier", op)
	}

	// The logbook family is owner-gated only.
	for _, r := range operationTiers[OpLogbookRead] {
		assert.NotEqual(t, TierPublic, r.Tier)
		assert.NotEqual(t, TierAccess, r.Tier)
	}
}

func TestCreateFamiliesHaveNoPublicTier(t *testing.T) {
	t.Parallel()

	creates := []Operation{OpDatasetCreate, OpAttachmentCreate, OpOrigDatablockCreate, OpDatablockCreate}
	for _, op := range creates {
		for _, r := range operationTiers[op] {
			assert.NotEqual(t, TierPublic, r.Tier,
				"create family %q must not have a public tier", op)
		}
	}
}

func TestValidOperation(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidOperation(OpDatasetRead))
	assert.True(t, ValidOperation(OpLogbookRead))
	assert.False(t, ValidOperation("dataset:read:any"), "actions are not operations")
	assert.False(t, ValidOperation("proposal:read"), "unknown resource kind")
}
