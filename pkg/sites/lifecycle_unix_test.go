//go:build unix

package sites

import (
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandsTreeToOperator(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("chown to another user needs root")
	}
	h := newHarness(t)
	h.id = Identity{User: "deploy", UID: 1234, GID: 1234, GroupGID: 4321}

	require.NoError(t, h.m.New(context.Background(), "example.com"))
	p := h.m.Paths("example.com")

	for _, path := range []string{p.Root, p.WebRoot, p.LogsDir, p.AccessLog, p.ErrorLog} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		st := info.Sys().(*syscall.Stat_t)
		assert.Equal(t, uint32(1234), st.Uid, path)
		assert.Equal(t, uint32(4321), st.Gid, path)
	}
}
