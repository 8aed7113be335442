package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroups(t *testing.T) {
	t.Parallel()

	g, err := ParseGroups([]byte("admin: [a, b]\ndelete: [c]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.Admin)
	assert.Equal(t, []string{"c"}, g.Delete)
	assert.Empty(t, g.CreateDataset)

	_, err = ParseGroups([]byte("admin: {"))
	assert.Error(t, err)
}

func TestNewAuthorizer_EmbeddedDefaults(t *testing.T) {
	t.Parallel()

	a, err := NewAuthorizer(DefaultConfig())
	require.NoError(t, err)

	admin := a.Ability(Principal{Username: "svc", CurrentGroups: []string{"archivemanager"}})
	assert.True(t, admin.Can(ActionDatasetReadAny),
		"archivemanager is in the default admin list")
	assert.True(t, admin.Can(ActionDatasetDeleteAny))
}

func TestNewAuthorizer_RejectsBadGroupsYAML(t *testing.T) {
	t.Parallel()

	_, err := NewAuthorizer(Config{GroupsYAML: []byte("admin: {")})
	assert.Error(t, err)
}
