package sites

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
)

// Identity is the owner applied to site trees: the operator behind sudo and
// the web server's group.
type Identity struct {
	User     string
	UID      int
	GID      int // primary group of User
	GroupGID int // service group, -1 when not resolved
}

// ResolveOwner looks up SUDO_USER, falling back to the current user. The
// service group is left unresolved.
func ResolveOwner() (Identity, error) {
	var (
		u   *user.User
		err error
	)
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		u, err = user.Lookup(sudoUser)
	} else {
		u, err = user.Current()
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve invoking user: %w", err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Identity{}, fmt.Errorf("unexpected uid %q: %w", u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return Identity{}, fmt.Errorf("unexpected gid %q: %w", u.Gid, err)
	}
	return Identity{User: u.Username, UID: uid, GID: gid, GroupGID: -1}, nil
}

// ResolveIdentity is ResolveOwner plus the service group.
func ResolveIdentity(group string) (Identity, error) {
	id, err := ResolveOwner()
	if err != nil {
		return Identity{}, err
	}

	g, err := user.LookupGroup(group)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve group %s: %w", group, err)
	}
	id.GroupGID, err = strconv.Atoi(g.Gid)
	if err != nil {
		return Identity{}, fmt.Errorf("unexpected gid %q: %w", g.Gid, err)
	}
	return id, nil
}
