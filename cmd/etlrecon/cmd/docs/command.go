// Package docs implements the docs command.
package docs

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/etlrecon/internal/appcontext"
	"github.com/agentstation/etlrecon/internal/cmd/cmdutil"
	"github.com/agentstation/etlrecon/internal/cmd/output"
	"github.com/agentstation/etlrecon/internal/cmd/table"
	gendocs "github.com/agentstation/etlrecon/internal/docs"
	"github.com/agentstation/etlrecon/pkg/catalog"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/project"
)

// Result describes the documentation generated for one project.
type Result struct {
	Project  string   `json:"project" yaml:"project"`
	Dir      string   `json:"dir" yaml:"dir"`
	Files    int      `json:"files" yaml:"files"`
	Mappings int      `json:"mappings" yaml:"mappings"`
	Fields   int      `json:"fields" yaml:"fields"`
	InS3     int      `json:"fields_in_s3" yaml:"fields_in_s3"`
	Written  []string `json:"written" yaml:"written"`
}

// NewCommand creates the docs command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var projectFlags *cmdutil.ProjectFlags

	cmd := &cobra.Command{
		Use:     "docs",
		GroupID: "core",
		Short:   "Document the ETL architecture catalog of projects",
		Long: `Docs reads the ETL architecture catalog found under a project's config_path
and writes a Markdown index, one Markdown page per mapping, a JSON metadata
file and a CSV of every field under the project's docs directory.

When the project has S3 files configured, every field is marked with
whether its source column appears in the header of the matching S3 file.`,
		Example: `  etlrecon docs --project chama   # Document one project
  etlrecon docs --all             # Document every project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(logging.WithLogger(cmd.Context(), app.Logger()), "docs")

			cfg, err := app.Projects()
			if err != nil {
				return err
			}
			selected, selectErr := projectFlags.Select(cfg)
			if len(selected) == 0 {
				return selectErr
			}
			if selectErr != nil {
				logging.FromContext(ctx).Error().Err(selectErr).Msg("Skipping unknown projects")
			}

			var (
				results []Result
				errs    = []error{selectErr}
			)
			for _, p := range selected {
				res, err := Generate(ctx, p)
				if err != nil {
					app.Logger().Error().Err(err).Str("project", p.Name).Msg("Documentation failed")
					errs = append(errs, errors.NewProjectError(p.Name, err))
					continue
				}
				results = append(results, *res)
			}

			if err := output.Print(cmd.OutOrStdout(), app.OutputFormat(), resultsTable(results), results); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}

	projectFlags = cmdutil.AddProjectFlags(cmd)

	return cmd
}

// Generate documents one project.
func Generate(ctx context.Context, p *project.Project) (*Result, error) {
	if err := p.ValidateForDocs(); err != nil {
		return nil, err
	}
	ctx = logging.WithProject(ctx, p.Name)
	logger := logging.FromContext(ctx)

	cat, err := catalog.Load(ctx, p.ConfigPath)
	if err != nil {
		return nil, err
	}

	var s3 gendocs.S3Index
	if dir := p.S3Dir(); dir != "" {
		s3, err = gendocs.IndexS3Headers(ctx, dir)
		if err != nil {
			// Documentation is still useful without the S3 cross-reference.
			logger.Warn().Err(err).Str("dir", dir).Msg("Cannot index S3 headers")
			s3 = nil
		}
	}

	g := gendocs.New(gendocs.WithOutputDir(p.DocsDir()))
	meta := gendocs.Build(p.Name, cat, s3, g.Now())
	written, err := g.Generate(ctx, meta)
	if err != nil {
		return nil, err
	}

	mappings, fields, inS3 := meta.Stats()
	return &Result{
		Project:  p.Name,
		Dir:      p.DocsDir(),
		Files:    len(meta.Files),
		Mappings: mappings,
		Fields:   fields,
		InS3:     inS3,
		Written:  written,
	}, nil
}

func resultsTable(results []Result) table.Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Project,
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Mappings),
			strconv.Itoa(r.Fields),
			strconv.Itoa(r.InS3),
			r.Dir,
		})
	}
	return table.Data{
		Headers: []string{"Project", "Files", "Mappings", "Fields", "In S3", "Directory"},
		Rows:    rows,
		ColumnAlignment: []table.Align{
			table.AlignLeft, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignLeft,
		},
	}
}
