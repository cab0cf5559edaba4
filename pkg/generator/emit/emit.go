// Package emit holds what every emitter shares: the output file type,
// capability flags and template rendering.
package emit

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// File is one generated file. Path is relative to the client's output directory.
type File struct {
	Path    string
	Content []byte
}

// Capability flags what an emitter produces.
type Capability uint8

const (
	// CapQueryHook marks emitters that produce data-fetching hooks for GET operations.
	CapQueryHook Capability = 1 << iota
	// CapMutationHook marks emitters that produce hooks for POST, PUT, PATCH and DELETE.
	CapMutationHook
	// CapKeyLiteral marks emitters that print cache-key literals.
	CapKeyLiteral
	// CapRawCall marks emitters that produce plain request functions.
	CapRawCall
)

var capNames = []struct {
	c    Capability
	name string
}{
	{CapQueryHook, "query-hook"},
	{CapMutationHook, "mutation-hook"},
	{CapKeyLiteral, "key-literal"},
	{CapRawCall, "raw-call"},
}

// Has reports whether every flag in o is set.
func (c Capability) Has(o Capability) bool { return c&o == o }

func (c Capability) String() string {
	var parts []string
	for _, n := range capNames {
		if c.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Funcs returns the sprig function map with extra merged over it.
func Funcs(extra template.FuncMap) template.FuncMap {
	funcMap := sprig.TxtFuncMap()
	for k, v := range extra {
		funcMap[k] = v
	}
	return funcMap
}

// Renderer executes named templates from one embedded tree.
type Renderer struct {
	fsys  fs.FS
	dir   string
	funcs template.FuncMap
}

// NewRenderer reads templates from dir inside fsys.
func NewRenderer(fsys fs.FS, dir string, funcs template.FuncMap) *Renderer {
	return &Renderer{fsys: fsys, dir: dir, funcs: funcs}
}

// Render executes templateName with data and returns the output.
func (r *Renderer) Render(templateName string, data any) ([]byte, error) {
	tmplContent, err := fs.ReadFile(r.fsys, r.dir+"/"+templateName)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templateName, err)
	}

	tmpl, err := template.New(templateName).Funcs(r.funcs).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}

// Job names one file to render.
type Job struct {
	Template string
	Path     string
}

// RenderAll renders each job with the same data, in order.
func (r *Renderer) RenderAll(jobs []Job, data any) ([]File, error) {
	out := make([]File, 0, len(jobs))
	for _, j := range jobs {
		content, err := r.Render(j.Template, data)
		if err != nil {
			return nil, err
		}
		out = append(out, File{Path: j.Path, Content: content})
	}
	return out, nil
}
