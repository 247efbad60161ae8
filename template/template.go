// Package template provides text templates for Virtualmin request fields and
// configuration files.
package template

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/dirien/virtualmin-sdk/model"
)

// Template wraps a text/template for generating request texts.
type Template struct {
	Template *template.Template
}

// TextValues are the values available to the text templates.
type TextValues struct {
	Platform string
	Email    string
}

// Name represents the name of a template.
type Name string

// Template name constants.
const (
	TemplateDescription   Name = "description"
	TemplateSuspendReason Name = "suspend-reason"
	TemplateConfig        Name = "config"
)

//go:embed templates
var templateFS embed.FS

// NewTemplateText creates the template set used for request texts.
func NewTemplateText() (*Template, error) {
	text, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/text/*")
	if err != nil {
		return nil, err
	}
	return &Template{
		Template: text,
	}, nil
}

// GetTemplate executes the named template with the given values.
func (t *Template) GetTemplate(name Name, values TextValues) (string, error) {
	var buff bytes.Buffer
	err := t.Template.ExecuteTemplate(&buff, string(name), values)
	if err != nil {
		return "", err
	}
	return buff.String(), nil
}

// NewTemplateConfig generates a configuration file for the given config.
func NewTemplateConfig(value model.Config) (string, error) {
	var buff bytes.Buffer
	config := template.Must(template.New("config").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/config/*"))
	err := config.ExecuteTemplate(&buff, string(TemplateConfig), value)
	if err != nil {
		return "", err
	}
	return buff.String(), nil
}
