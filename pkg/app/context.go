package app

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Context holds application-wide configuration and state
type Context struct {
	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Stdout receives listings and reports; Stderr receives log output
	Stdout io.Writer
	Stderr io.Writer
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		OutputFormat: OutputTable,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// Validate checks the output preferences
func (c *Context) Validate() error {
	switch c.OutputFormat {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return NewError(ErrCodeInvalidInput, fmt.Sprintf("unsupported output format: %s", c.OutputFormat), nil)
	}
	if c.Verbose && c.Quiet {
		return NewError(ErrCodeInvalidInput, "cannot use --verbose and --quiet together", nil)
	}
	return nil
}

// Logger returns a logger writing to Stderr. Quiet discards everything,
// verbose shows V(1) diagnostics.
func (c *Context) Logger() logr.Logger {
	if c.Quiet {
		return logr.Discard()
	}
	verbosity := 0
	if c.Verbose {
		verbosity = 1
	}
	w := c.Stderr
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

// Error writes an error message to Stderr. Errors are shown even when quiet.
func (c *Context) Error(message string) {
	fmt.Fprintln(c.Stderr, "Error:", message)
}
