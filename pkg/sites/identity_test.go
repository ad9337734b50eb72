package sites

import (
	"os"
	"os/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentity(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	current, err := user.Current()
	require.NoError(t, err)
	g, err := user.LookupGroupId(current.Gid)
	if err != nil {
		t.Skipf("primary group of %s has no name: %v", current.Username, err)
	}

	id, err := ResolveIdentity(g.Name)
	require.NoError(t, err)
	assert.Equal(t, current.Username, id.User)
	assert.Equal(t, os.Getuid(), id.UID)
	assert.Equal(t, id.GID, id.GroupGID)
}

func TestResolveIdentityUnknownGroup(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	_, err := ResolveIdentity("no-such-group-sitectl")
	assert.ErrorContains(t, err, "failed to resolve group")
}

func TestResolveOwnerSkipsGroup(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	id, err := ResolveOwner()
	require.NoError(t, err)
	assert.Equal(t, os.Getuid(), id.UID)
	assert.Equal(t, -1, id.GroupGID)
}
