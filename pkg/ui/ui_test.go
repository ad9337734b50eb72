package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteRow(t *testing.T) {
	assert.Contains(t, SiteRow("example.com", true), "Enabled")
	assert.Contains(t, SiteRow("example.com", false), "Disabled")
	assert.Contains(t, SiteRow("a-very-long-site-name-that-exceeds-the-column.example.com", false), "a-very-long-site-name-that-exceeds-the-column.example.com")
}
