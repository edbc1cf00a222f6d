package apidocs

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml.tmpl
var staticTemplate string

var errEmptyDocument = errors.New("the API description declares no paths")

// Static renders the embedded description for the given attribute name.
func Static(attrName string) (*Document, error) {
	tmpl, err := template.New("openapi").Parse(staticTemplate)
	if err != nil {
		return nil, fmt.Errorf("in internal/apidocs/static.go/Static(): error while `template.Parse()` calling: %w", err)
	}

	var rendered bytes.Buffer
	err = tmpl.Execute(&rendered, struct{ AttrName string }{AttrName: attrName})
	if err != nil {
		return nil, fmt.Errorf("in internal/apidocs/static.go/Static(): error while `tmpl.Execute()` calling: %w", err)
	}

	return Parse(rendered.Bytes())
}

// Parse reads a YAML (or JSON, which is valid YAML) description.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("in internal/apidocs/static.go/Parse(): error while `yaml.Unmarshal()` calling: %w", err)
	}
	if len(doc.Paths) == 0 {
		return nil, errEmptyDocument
	}

	return &doc, nil
}
