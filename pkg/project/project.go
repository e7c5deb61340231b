// Package project loads the projects.yaml file that describes where each
// ETL project keeps its catalog, its ETL output and its S3 downloads.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/etlrecon/internal/matcher"
	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
)

// Comparison holds the S3 vs ETL settings of a project.
type Comparison struct {
	S3Path     string `yaml:"s3_path" json:"s3_path"`
	ETLPath    string `yaml:"etl_path,omitempty" json:"etl_path,omitempty"`
	OutputPath string `yaml:"output_path,omitempty" json:"output_path,omitempty"`
}

// Project is one configured ETL project. All paths are absolute once the
// project has been returned by Load or Parse.
type Project struct {
	Name                   string      `yaml:"-" json:"name"`
	Description            string      `yaml:"description,omitempty" json:"description,omitempty"`
	ConfigPath             string      `yaml:"config_path,omitempty" json:"config_path,omitempty"`
	OutputDir              string      `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	CaseInsensitiveColumns bool        `yaml:"case_insensitive_columns,omitempty" json:"case_insensitive_columns,omitempty"`
	CaseInsensitiveValues  bool        `yaml:"case_insensitive_values,omitempty" json:"case_insensitive_values,omitempty"`
	IgnoreColumns          []string    `yaml:"ignore_columns,omitempty" json:"ignore_columns,omitempty"`
	SystemMetadata         string      `yaml:"system_metadata,omitempty" json:"system_metadata,omitempty"`
	SniffSampleLines       int         `yaml:"sniff_sample_lines,omitempty" json:"sniff_sample_lines,omitempty"`
	S3Comparison           *Comparison `yaml:"s3_comparison,omitempty" json:"s3_comparison,omitempty"`
}

// ETLDir is the directory holding the ETL-generated CSV files.
func (p *Project) ETLDir() string {
	if p.S3Comparison != nil && p.S3Comparison.ETLPath != "" {
		return p.S3Comparison.ETLPath
	}
	return filepath.Join(p.OutputDir, constants.DefaultETLDir)
}

// S3Dir is the directory holding the downloaded S3 CSV files. It is empty
// when the project has no comparison settings.
func (p *Project) S3Dir() string {
	if p.S3Comparison == nil {
		return ""
	}
	return p.S3Comparison.S3Path
}

// ComparisonDir is where comparison reports are written.
func (p *Project) ComparisonDir() string {
	if p.S3Comparison != nil && p.S3Comparison.OutputPath != "" {
		return p.S3Comparison.OutputPath
	}
	return filepath.Join(p.OutputDir, constants.DefaultComparisonDir)
}

// DocsDir is where documentation is generated.
func (p *Project) DocsDir() string {
	return filepath.Join(p.OutputDir, constants.DefaultDocsDir)
}

// SystemDir is where the ETL vs system report is written.
func (p *Project) SystemDir() string {
	return filepath.Join(p.OutputDir, constants.DefaultSystemDir)
}

// ValidateForComparison checks the settings the compare command needs.
func (p *Project) ValidateForComparison() error {
	if p.S3Comparison == nil || p.S3Comparison.S3Path == "" {
		return errors.NewConfigError(p.Name, "s3_comparison.s3_path is not configured", nil)
	}
	return nil
}

// ValidateForDocs checks the settings the docs command needs.
func (p *Project) ValidateForDocs() error {
	if p.ConfigPath == "" {
		return errors.NewConfigError(p.Name, "config_path is not configured", nil)
	}
	return nil
}

// ValidateForSystem checks the settings the system command needs.
func (p *Project) ValidateForSystem() error {
	if err := p.ValidateForDocs(); err != nil {
		return err
	}
	if p.SystemMetadata == "" {
		return errors.NewConfigError(p.Name, "system_metadata is not configured", nil)
	}
	return nil
}

// Config is the parsed projects file.
type Config struct {
	BaseDir   string              `yaml:"base_dir,omitempty" json:"base_dir,omitempty"`
	OutputDir string              `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	Projects  map[string]*Project `yaml:"projects" json:"projects"`
}

// Load reads and resolves the projects file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("projects", "cannot read "+path, errors.WrapIO("read", path, err))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewConfigError("projects", "cannot resolve "+path, err)
	}
	return Parse(data, filepath.Dir(abs))
}

// Parse decodes a projects document (YAML or JSON). Relative paths resolve
// against base_dir, which itself is relative to dir.
func Parse(data []byte, dir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError("projects", "invalid projects file", errors.WrapParse("yaml", "", err))
	}
	if len(cfg.Projects) == 0 {
		return nil, errors.NewConfigError("projects", "no projects defined", nil)
	}

	cfg.BaseDir = resolve(dir, cfg.BaseDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = constants.DefaultOutputDir
	}
	cfg.OutputDir = resolve(cfg.BaseDir, cfg.OutputDir)

	for name, p := range cfg.Projects {
		if strings.TrimSpace(name) == "" {
			return nil, errors.NewConfigError("projects", "project with empty name", nil)
		}
		if p == nil {
			p = &Project{}
			cfg.Projects[name] = p
		}
		p.Name = name
		if _, err := matcher.NewSet(p.IgnoreColumns, nil); err != nil {
			return nil, errors.NewConfigError(name, "invalid ignore_columns", err)
		}
		if p.SniffSampleLines < 0 {
			return nil, errors.NewConfigError(name, "invalid sniff_sample_lines",
				errors.NewValidationError("sniff_sample_lines", p.SniffSampleLines, "must not be negative"))
		}
		cfg.resolveProject(p)
	}

	return &cfg, nil
}

func (c *Config) resolveProject(p *Project) {
	if p.OutputDir == "" {
		p.OutputDir = filepath.Join(c.OutputDir, p.Name)
	} else {
		p.OutputDir = resolve(c.BaseDir, p.OutputDir)
	}
	if p.ConfigPath != "" {
		p.ConfigPath = resolve(c.BaseDir, p.ConfigPath)
	}
	if p.SystemMetadata != "" {
		p.SystemMetadata = resolve(c.BaseDir, p.SystemMetadata)
	}
	if s := p.S3Comparison; s != nil {
		if s.S3Path != "" {
			s.S3Path = resolve(c.BaseDir, s.S3Path)
		}
		if s.ETLPath != "" {
			s.ETLPath = resolve(c.BaseDir, s.ETLPath)
		}
		if s.OutputPath != "" {
			s.OutputPath = resolve(c.BaseDir, s.OutputPath)
		}
	}
}

// Names returns the configured project names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Projects))
	for name := range c.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named project.
func (c *Config) Get(name string) (*Project, error) {
	p, ok := c.Projects[name]
	if !ok {
		return nil, errors.NewConfigError(name, "unknown project, available: "+strings.Join(c.Names(), ", "),
			errors.NewNotFoundError("project", name))
	}
	return p, nil
}

// Select returns the projects named, or every project when all is set.
// Names are de-duplicated and returned in the order given.
//
// Unknown names do not prevent the known ones from being returned: each of
// them becomes an *errors.ProjectError wrapping a *errors.ConfigError, and
// those are joined into the returned error.
func (c *Config) Select(names []string, all bool) ([]*Project, error) {
	if all {
		names = c.Names()
	}
	if len(names) == 0 {
		return nil, errors.NewValidationError("project", nil, "specify --project or --all")
	}

	seen := make(map[string]bool, len(names))
	out := make([]*Project, 0, len(names))
	var errs []error
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		p, err := c.Get(name)
		if err != nil {
			errs = append(errs, errors.NewProjectError(name, err))
			continue
		}
		out = append(out, p)
	}
	return out, errors.Join(errs...)
}

func resolve(base, path string) string {
	if path == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
