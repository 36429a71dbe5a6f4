// Package prompts holds the system instructions and user-message templates of
// the reasoning stages.
//
// A Table reads one YAML file per stage from an fs.FS on first lookup and
// keeps the parsed template for the rest of the process. Entries are never
// replaced once stored, so a Table can be shared by concurrent pipeline runs.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/erenakay1/CV-Analizer/internal/llm"
)

// Stage names known to the pipeline.
const (
	Analyzer  = "cv_analyzer"
	Critic    = "cv_critic"
	Optimizer = "cv_optimizer"
)

// Variant selects which user-message template of a stage is rendered.
type Variant string

const (
	Fresh Variant = "user"
	Retry Variant = "retry"
)

var ErrUnknownStage = errors.New("unknown prompt stage")

//go:embed templates/*.yaml
var embedded embed.FS

type file struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	System      string `yaml:"system"`
	User        string `yaml:"user"`
	Retry       string `yaml:"retry"`
}

// Template is the parsed prompt set of one stage.
type Template struct {
	Name        string
	Description string
	System      string

	variants map[Variant]*template.Template
	sources  map[Variant]string
}

// Source returns the raw template text of a variant.
func (t *Template) Source(v Variant) (string, bool) {
	s, ok := t.sources[v]
	return s, ok
}

// Render executes the variant template with data.
func (t *Template) Render(v Variant, data any) (llm.Prompt, error) {
	tmpl, ok := t.variants[v]
	if !ok {
		return llm.Prompt{}, fmt.Errorf("prompt %s has no %q template", t.Name, v)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return llm.Prompt{}, fmt.Errorf("render %s/%s: %w", t.Name, v, err)
	}
	return llm.Prompt{System: t.System, User: strings.TrimSpace(buf.String())}, nil
}

// Table is a lazily populated, read-only lookup of stage templates.
type Table struct {
	fsys    fs.FS
	dir     string
	entries sync.Map // stage name -> *Template
}

// Default returns a Table over the templates compiled into the binary.
func Default() *Table {
	return &Table{fsys: embedded, dir: "templates"}
}

// New returns a Table reading <stage>.yaml files from the root of fsys, e.g.
// os.DirFS of a user-supplied override directory.
func New(fsys fs.FS) *Table {
	return &Table{fsys: fsys, dir: "."}
}

// Lookup returns the template of stage, loading it on first use.
func (t *Table) Lookup(stage string) (*Template, error) {
	if v, ok := t.entries.Load(stage); ok {
		return v.(*Template), nil
	}
	tmpl, err := t.load(stage)
	if err != nil {
		return nil, err
	}
	actual, _ := t.entries.LoadOrStore(stage, tmpl)
	return actual.(*Template), nil
}

func (t *Table) load(stage string) (*Template, error) {
	if stage == "" || strings.ContainsAny(stage, `/\.`) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	data, err := fs.ReadFile(t.fsys, path.Join(t.dir, stage+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", stage, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", stage, err)
	}
	if strings.TrimSpace(f.System) == "" || strings.TrimSpace(f.User) == "" {
		return nil, fmt.Errorf("prompt %s: system and user templates are required", stage)
	}

	tmpl := &Template{
		Name:        stage,
		Description: f.Description,
		System:      strings.TrimSpace(f.System),
		variants:    make(map[Variant]*template.Template),
		sources:     make(map[Variant]string),
	}
	for v, src := range map[Variant]string{Fresh: f.User, Retry: f.Retry} {
		if strings.TrimSpace(src) == "" {
			continue
		}
		parsed, err := template.New(stage + "/" + string(v)).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s/%s: %w", stage, v, err)
		}
		tmpl.variants[v] = parsed
		tmpl.sources[v] = src
	}
	return tmpl, nil
}

// Names lists the stages available in the table's file system.
func (t *Table) Names() ([]string, error) {
	entries, err := fs.ReadDir(t.fsys, t.dir)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}
