// Package constants provides shared constants used throughout the etlrecon codebase.
// This includes file permissions, report file names, limits and other values
// that should be consistent across the application.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Tabular loading constants
const (
	// SniffSampleLines is the number of data lines inspected after the header
	// when detecting the field delimiter
	SniffSampleLines = 5

	// CSVExtension is the extension of enumerated input files
	CSVExtension = ".csv"

	// ZoneIdentifierMarker marks Windows alternate-stream artifacts copied next to downloads
	ZoneIdentifierMarker = "Zone.Identifier"
)

// Limit constants define various limits and capacities
const (
	// DefaultWorkers is the default number of files compared concurrently
	DefaultWorkers = 1

	// MaxWorkers caps the per-project worker pool
	MaxWorkers = 32
)

// Report file names written for every project
const (
	// ComparedFileSuffix is appended to the canonical key of every compared file
	ComparedFileSuffix = "_comparado.csv"

	// SummaryFile lists one line per compared file
	SummaryFile = "RESUMO_COMPARACAO.csv"

	// SummaryMarkdownFile is the Markdown rendition of the summary
	SummaryMarkdownFile = "RESUMO_COMPARACAO.md"

	// ConsolidatedFile flattens every verdict of a project
	ConsolidatedFile = "COMPARACAO_CONSOLIDADA.csv"

	// MissingFile lists ETL files without an S3 counterpart
	MissingFile = "ARQUIVOS_ETL_SEM_S3.csv"

	// SummaryJSONFile holds the machine-readable project summary
	SummaryJSONFile = "comparacao.json"

	// WorkbookFile is the optional XLSX rendition of the summary
	WorkbookFile = "COMPARACAO.xlsx"

	// MergedConsolidatedFile merges every project's consolidated report
	MergedConsolidatedFile = "COMPARACAO_CONSOLIDADA_GERAL.csv"

	// MergedMissingFile merges every project's missing report
	MergedMissingFile = "ARQUIVOS_ETL_SEM_S3_GERAL.csv"

	// SystemMetadataFile holds the ETL vs system usage report
	SystemMetadataFile = "etl_vs_system_metadata.json"

	// SystemFieldsFile lists every catalog field with its system usage
	SystemFieldsFile = "etl_vs_system_fields.csv"
)

// Path constants
const (
	// DefaultProjectsFile is the default location of the project configuration
	DefaultProjectsFile = "config/projects.yaml"

	// DefaultETLDir is the ETL directory relative to a project's output directory
	DefaultETLDir = "etl"

	// DefaultComparisonDir is the comparison directory relative to a project's output directory
	DefaultComparisonDir = "s3_vs_etl"

	// DefaultDocsDir is the documentation directory relative to a project's output directory
	DefaultDocsDir = "docs"

	// DefaultSystemDir is the ETL vs system directory relative to a project's output directory
	DefaultSystemDir = "etl_vs_system"

	// DefaultOutputDir is the cross-project output directory
	DefaultOutputDir = "output"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatHuman is a human-readable time format used in generated documents
	TimeFormatHuman = "2006-01-02 15:04:05"
)
