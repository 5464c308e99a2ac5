package report

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileSpec is the YAML layout of declarative report definitions.
type FileSpec struct {
	App     string           `yaml:"app"`
	Reports []DefinitionSpec `yaml:"reports" validate:"dive"`
}

type DefinitionSpec struct {
	Module          string       `yaml:"module"`
	Name            string       `yaml:"name" validate:"required"`
	Description     string       `yaml:"description"`
	MaxRecords      int          `yaml:"max_records" validate:"gte=0"`
	Format          string       `yaml:"format" validate:"omitempty,oneof=csv tsv xml xlsx pdf"`
	Async           bool         `yaml:"async"`
	PrefetchRelated *bool        `yaml:"prefetch_related"`
	Fields          []string     `yaml:"fields" validate:"omitempty,dive,required"`
	Lookups         []LookupSpec `yaml:"lookups" validate:"dive"`
}

// LookupSpec sets exactly one of Attr, Script or Literal.
type LookupSpec struct {
	Column  string    `yaml:"column" validate:"required"`
	Attr    string    `yaml:"attr"`
	Script  string    `yaml:"script"`
	Literal yaml.Node `yaml:"literal" validate:"-"`
}

func (l LookupSpec) spec() (FieldSpec, error) {
	set := 0
	for _, ok := range []bool{l.Attr != "", l.Script != "", !l.Literal.IsZero()} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return FieldSpec{}, fmt.Errorf("%w: column %q needs exactly one of attr, script or literal", ErrInvalidLookup, l.Column)
	}

	switch {
	case l.Attr != "":
		return Attr(l.Attr), nil
	case l.Script != "":
		return Script(l.Script)
	}
	var v any
	if err := l.Literal.Decode(&v); err != nil {
		return FieldSpec{}, fmt.Errorf("%w: column %q: %v", ErrInvalidLookup, l.Column, err)
	}
	return Literal(v), nil
}

func (d DefinitionSpec) definition() (*Definition, error) {
	renderer, err := rendererFor(d.Format)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithDescription(d.Description),
		WithMaxRecords(d.MaxRecords),
		WithRenderer(renderer),
	}
	if len(d.Fields) > 0 {
		opts = append(opts, WithFields(d.Fields...))
	}
	if d.Async {
		opts = append(opts, WithAsync())
	}
	if d.PrefetchRelated != nil && !*d.PrefetchRelated {
		opts = append(opts, WithoutPrefetch())
	}
	if len(d.Lookups) > 0 {
		lookups := make([]FieldLookup, len(d.Lookups))
		for i, l := range d.Lookups {
			spec, err := l.spec()
			if err != nil {
				return nil, err
			}
			lookups[i] = FieldLookup{Column: l.Column, Spec: spec}
		}
		opts = append(opts, WithLookups(lookups...))
	}

	def := NewDefinition(d.Name, opts...)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// FileProvider registers reports declared in a YAML file.
type FileProvider struct {
	label   string
	entries []fileEntry
}

type fileEntry struct {
	module string
	def    *Definition
}

func LoadFile(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report config: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func Parse(data []byte) (*FileProvider, error) {
	var spec FileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse report config: %w", err)
	}
	if err := validator.New().Struct(spec); err != nil {
		return nil, fmt.Errorf("invalid report config: %w", err)
	}

	p := &FileProvider{label: spec.App}
	if p.label == "" {
		p.label = "reports-config"
	}
	for _, d := range spec.Reports {
		def, err := d.definition()
		if err != nil {
			return nil, fmt.Errorf("report %q: %w", d.Name, err)
		}
		p.entries = append(p.entries, fileEntry{module: d.Module, def: def})
	}
	return p, nil
}

func (p *FileProvider) Label() string { return p.label }

func (p *FileProvider) RegisterReports(reg *Registry) error {
	for _, e := range p.entries {
		if err := reg.Register(e.module, e.def); err != nil {
			return err
		}
	}
	return nil
}
