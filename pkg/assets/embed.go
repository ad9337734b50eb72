package assets

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"
)

//go:embed runtime
var assetsFS embed.FS

// VhostData is the input of the nginx server block template.
type VhostData struct {
	Name      string
	WebRoot   string
	AccessLog string
	ErrorLog  string
}

// ReadTemplate reads an embedded template file.
func ReadTemplate(name string) (string, error) {
	path := fmt.Sprintf("runtime/nginx/%s", name)
	data, err := assetsFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderVhost renders the server block for a site. An empty overridePath
// selects the embedded site.conf.tmpl.
func RenderVhost(overridePath string, data VhostData) ([]byte, error) {
	var raw string
	if overridePath != "" {
		b, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read vhost template: %w", err)
		}
		raw = string(b)
	} else {
		s, err := ReadTemplate("site.conf.tmpl")
		if err != nil {
			return nil, err
		}
		raw = s
	}

	tpl, err := template.New("vhost").Option("missingkey=error").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vhost template: %w", err)
	}
	var out bytes.Buffer
	if err := tpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("failed to render vhost template: %w", err)
	}
	return out.Bytes(), nil
}
