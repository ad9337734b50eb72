package sites

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supreme-majesty/sitectl/pkg/adapters"
	"github.com/supreme-majesty/sitectl/pkg/events"
)

func TestCert(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.m.Cert(context.Background(), "example.com"))
	assert.Equal(t, [][]string{{"example.com", "www.example.com"}}, h.certs.domains)
	assert.Equal(t, []events.EventType{events.CertIssued}, h.eventTypes())
}

func TestCertToolFailure(t *testing.T) {
	h := newHarness(t)
	h.certs.err = &adapters.ExternalToolError{Tool: "certbot", Err: errors.New("exit status 1")}

	err := h.m.Cert(context.Background(), "example.com")
	var toolErr *adapters.ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "certbot", toolErr.Tool)
	assert.Empty(t, h.events)
}
