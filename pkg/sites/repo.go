package sites

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/supreme-majesty/sitectl/pkg/events"
)

// PostReceiveHook returns the hook script that deploys pushes of the deploy
// branch into the site's web root.
func (m *Manager) PostReceiveHook(name string) string {
	p := m.Paths(name)
	return fmt.Sprintf("#!/bin/sh\ngit --work-tree=%s --git-dir=%s checkout -f %s\n", p.WebRoot, p.Repo, m.cfg.DeployBranch)
}

// Repo creates <git_root>/<site>.git as a bare repository with a
// post-receive deploy hook. An existing repository is never touched.
func (m *Manager) Repo(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	id, err := m.owner()
	if err != nil {
		return "", err
	}

	p := m.Paths(name)
	if err := os.MkdirAll(m.cfg.GitRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", m.cfg.GitRoot, err)
	}
	if err := os.Mkdir(p.Repo, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("repository %s: %w", p.Repo, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create %s: %w", p.Repo, err)
	}
	if err := m.initRepo(ctx, name, id); err != nil {
		// p.Repo was created by this call.
		if rmErr := os.RemoveAll(p.Repo); rmErr != nil {
			m.log.Warn("failed to remove partial repository", zap.String("repo", p.Repo), zap.Error(rmErr))
		}
		return "", err
	}

	m.publish(events.RepoCreated, name, map[string]string{"repo": p.Repo, "branch": m.cfg.DeployBranch})
	return p.Repo, nil
}

// initRepo fills a freshly created repository directory.
func (m *Manager) initRepo(ctx context.Context, name string, id Identity) error {
	p := m.Paths(name)
	if err := os.Chmod(p.Repo, 0755|os.ModeSetuid|os.ModeSetgid); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", p.Repo, err)
	}

	if err := m.repos.InitBare(ctx, p.Repo); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", p.Repo, err)
	}

	hooks := filepath.Join(p.Repo, "hooks")
	if err := os.MkdirAll(hooks, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", hooks, err)
	}
	hook := filepath.Join(hooks, "post-receive")
	if err := os.WriteFile(hook, []byte(m.PostReceiveHook(name)), 0755); err != nil {
		return fmt.Errorf("failed to write %s: %w", hook, err)
	}
	// WriteFile leaves the mode of an existing file alone and is subject to umask.
	if err := os.Chmod(hook, 0755); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", hook, err)
	}

	err := filepath.WalkDir(p.Repo, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Lchown(path, id.UID, -1)
	})
	if err != nil {
		return fmt.Errorf("failed to set owner of %s: %w", p.Repo, err)
	}
	return nil
}
