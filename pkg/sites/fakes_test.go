package sites

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supreme-majesty/sitectl/pkg/config"
	"github.com/supreme-majesty/sitectl/pkg/events"
	"github.com/supreme-majesty/sitectl/pkg/prompt"
)

type archiveCall struct {
	src, dest string
}

type fakeArchiver struct {
	calls []archiveCall
	fail  map[string]error // keyed by source basename
}

func (f *fakeArchiver) Archive(_ context.Context, src, dest string) error {
	f.calls = append(f.calls, archiveCall{src: src, dest: dest})
	if err, ok := f.fail[filepath.Base(src)]; ok {
		return err
	}
	return os.WriteFile(dest, []byte("archive of "+src), 0640)
}

type fakeRepos struct {
	dirs []string
	err  error
}

func (f *fakeRepos) InitBare(_ context.Context, dir string) error {
	f.dirs = append(f.dirs, dir)
	return f.err
}

type fakeCerts struct {
	domains [][]string
	err     error
}

func (f *fakeCerts) Issue(_ context.Context, domains []string) error {
	f.domains = append(f.domains, domains)
	return f.err
}

type fakeServices struct {
	stopped       []string
	daemonReloads int
	stopErr       error
}

func (f *fakeServices) StopAndDisable(_ context.Context, unit string) error {
	f.stopped = append(f.stopped, unit)
	return f.stopErr
}

func (f *fakeServices) DaemonReload(context.Context) error {
	f.daemonReloads++
	return nil
}

type fakeWeb struct {
	reloads int
	err     error
}

func (f *fakeWeb) Reload(context.Context) error {
	f.reloads++
	return f.err
}

// confirmFunc records every question it is asked.
type confirmFunc struct {
	answer    bool
	questions []string
}

func (c *confirmFunc) Confirm(q string) bool {
	c.questions = append(c.questions, q)
	return c.answer
}

type harness struct {
	cfg      config.Config
	m        *Manager
	archiver *fakeArchiver
	repos    *fakeRepos
	certs    *fakeCerts
	services *fakeServices
	web      *fakeWeb
	confirm  *confirmFunc
	euid     int
	free     uint64

	id          Identity
	identityErr error // service group lookup failure
	events   []events.Event
}

var _ prompt.Confirmer = (*confirmFunc)(nil)

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.SitesRoot = filepath.Join(root, "www")
	cfg.AvailableDir = filepath.Join(root, "nginx", "sites-available")
	cfg.EnabledDir = filepath.Join(root, "nginx", "sites-enabled")
	cfg.UnitDir = filepath.Join(root, "systemd")
	cfg.GitRoot = filepath.Join(root, "repo")
	cfg.BackupDir = filepath.Join(root, "backups")
	cfg.LockDir = filepath.Join(root, "lock")
	require.NoError(t, cfg.Validate())

	h := &harness{
		cfg:      cfg,
		archiver: &fakeArchiver{fail: map[string]error{}},
		repos:    &fakeRepos{},
		certs:    &fakeCerts{},
		services: &fakeServices{},
		web:      &fakeWeb{},
		confirm:  &confirmFunc{answer: true},
		euid:     0,
		free:     1 << 40,
		id:       Identity{User: "deploy", UID: os.Getuid(), GID: os.Getgid(), GroupGID: os.Getgid()},
	}

	bus := events.NewBus()
	bus.SubscribeAll(func(e events.Event) { h.events = append(h.events, e) })

	h.m = NewManager(cfg, Options{
		Archiver:  h.archiver,
		Repos:     h.repos,
		Certs:     h.certs,
		Services:  h.services,
		WebServer: h.web,
		Confirmer: h.confirm,
		Bus:       bus,
		Identity: func() (Identity, error) {
			if h.identityErr != nil {
				return Identity{}, h.identityErr
			}
			return h.id, nil
		},
		Owner: func() (Identity, error) {
			owner := h.id
			owner.GroupGID = -1
			return owner, nil
		},
		Euid:      func() int { return h.euid },
		Now:       func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) },
		FreeSpace: func(context.Context, string) (uint64, error) { return h.free, nil },
	})
	return h
}

func (h *harness) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(h.events))
	for _, e := range h.events {
		types = append(types, e.Type)
	}
	return types
}

// snapshot maps every path under dir to its mode, for no-mutation checks.
func snapshot(t *testing.T, dir string) map[string]os.FileMode {
	t.Helper()
	out := map[string]os.FileMode{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		out[path] = info.Mode()
		return nil
	})
	require.NoError(t, err)
	return out
}
