// Package unitfiles renders the systemd service units klippctl installs.
package unitfiles

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed units/*.service.tmpl
var unitFS embed.FS

// Data carries the values substituted into a unit template.
type Data struct {
	User        string
	Dir         string
	VenvDir     string
	PrinterData string
}

// Render produces the unit file content for the named component.
func Render(name string, data Data) ([]byte, error) {
	path := "units/" + name + ".service.tmpl"
	raw, err := unitFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no unit template for %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse unit template %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render unit template %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// Has reports whether a unit template exists for the named component.
func Has(name string) bool {
	_, err := unitFS.ReadFile("units/" + name + ".service.tmpl")
	return err == nil
}
