package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/etlrecon/pkg/project"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ProjectsFunc     func() (*project.Config, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	WorkersFunc      func() int
	WorkbookFunc     func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Projects returns a projects configuration using the mock function or an
// empty configuration.
func (m *Mock) Projects() (*project.Config, error) {
	if m.ProjectsFunc != nil {
		return m.ProjectsFunc()
	}
	return &project.Config{Projects: map[string]*project.Project{}}, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Workers returns the worker count using the mock function or 1.
func (m *Mock) Workers() int {
	if m.WorkersFunc != nil {
		return m.WorkersFunc()
	}
	return 1
}

// Workbook returns the workbook switch using the mock function or false.
func (m *Mock) Workbook() bool {
	if m.WorkbookFunc != nil {
		return m.WorkbookFunc()
	}
	return false
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
