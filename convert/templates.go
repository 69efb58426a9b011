package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"h2d/config"
	"h2d/document"
)

// outputFormat names what convert produces.
const outputFormat = "wordml"

// Values is a struct that holds variables we make available for template
// expansion.
type Values struct {
	Context string
	// Title is text of the first heading, empty when document has none.
	Title string
	// Name is source file name without extension.
	Name string
	// Dir is source directory relative to the processed path, "." for the
	// top level.
	Dir        string
	SourceFile string
	Format     string
	Images     int
}

func buildValues(doc *document.Document, src string) Values {
	src = filepath.ToSlash(src)
	base := filepath.Base(src)
	v := Values{
		Title:      documentTitle(doc),
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		Dir:        filepath.ToSlash(filepath.Dir(src)),
		SourceFile: base,
		Format:     outputFormat,
	}
	for range doc.Images() {
		v.Images++
	}
	return v
}

// documentTitle returns text of the first heading with white space
// collapsed.
func documentTitle(doc *document.Document) string {
	for p := range doc.Paragraphs() {
		if strings.HasPrefix(p.Style, "Heading") {
			if title := strings.Join(strings.Fields(p.Text()), " "); title != "" {
				return title
			}
		}
	}
	return ""
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
