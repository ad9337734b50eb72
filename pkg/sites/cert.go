package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/supreme-majesty/sitectl/pkg/events"
)

// Domains returns the names certified for a site: the site itself and its www host.
func Domains(name string) []string {
	return []string{name, "www." + name}
}

// Cert delegates certificate issuance for the site's domains.
func (m *Manager) Cert(ctx context.Context, name string) error {
	release, err := m.begin(name)
	if err != nil {
		return err
	}
	defer release()

	domains := Domains(name)
	if err := m.certs.Issue(ctx, domains); err != nil {
		return fmt.Errorf("failed to issue certificate for %s: %w", name, err)
	}
	m.publish(events.CertIssued, name, map[string]string{"domains": strings.Join(domains, ",")})
	return nil
}
