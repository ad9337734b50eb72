package sites

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/supreme-majesty/sitectl/pkg/util"
)

// Info describes a site as found on disk.
type Info struct {
	Name      string
	Paths     Paths
	HasTree   bool
	Available bool
	Enabled   bool
	HasRepo   bool
	HasUnit   bool
	SizeBytes uint64
	FSFree    uint64
	FSTotal   uint64
}

// Info gathers the state of one site. A name with neither a tree nor an
// availability entry is not found.
func (m *Manager) Info(ctx context.Context, name string) (Info, error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	p := m.Paths(name)
	info := Info{
		Name:      name,
		Paths:     p,
		HasTree:   util.IsDir(p.Root),
		Available: util.Exists(p.Available),
		Enabled:   util.Lexists(p.Enabled),
		HasRepo:   util.IsDir(p.Repo),
		HasUnit:   util.Lexists(p.Unit),
	}
	if !info.HasTree && !info.Available {
		return Info{}, fmt.Errorf("site %s does not exist: %w", name, ErrNotFound)
	}

	if info.HasTree {
		size, err := treeSize(p.Root)
		if err != nil {
			return Info{}, fmt.Errorf("failed to measure %s: %w", p.Root, err)
		}
		info.SizeBytes = size

		usage, err := disk.UsageWithContext(ctx, p.Root)
		if err != nil {
			return Info{}, fmt.Errorf("failed to read disk usage of %s: %w", p.Root, err)
		}
		info.FSFree = usage.Free
		info.FSTotal = usage.Total
	}
	return info, nil
}
