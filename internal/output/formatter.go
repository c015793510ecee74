// Package output renders projected trajectories and scenario comparisons
// into terminal, CSV, JSON, and XLSX reports.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/finpath/trajectory-engine/internal/domain"
)

// ErrUnsupportedFormat is returned when a format name does not resolve to
// a registered formatter.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Formatter renders a trajectory into a byte stream for one output format.
// Implementations should be pure (no side effects besides deterministic
// formatting).
type Formatter interface {
	Format(trajectory *domain.Trajectory) ([]byte, error)
	// Name returns a short identifier for lookup and logging.
	Name() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*domain.Trajectory) ([]byte, error)
}

func (ff FormatterFunc) Format(t *domain.Trajectory) ([]byte, error) { return ff.F(t) }
func (ff FormatterFunc) Name() string                                { return ff.ID }

// builtInFormatters stores the available formatters.
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	CSVFormatter{},
	JSONFormatter{},
	XLSXFormatter{},
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"text":        "console",
	"txt":         "console",
	"terminal":    "console",
	"json-pretty": "json",
	"excel":       "xlsx",
	"spreadsheet": "xlsx",
}

// NormalizeFormatName lowers, trims, and resolves aliases. Unknown names
// pass through unchanged for the caller to reject.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// GetFormatterByName resolves a format name or alias to its formatter.
func GetFormatterByName(name string) (Formatter, error) {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f, nil
		}
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q (available: %s)",
		name, strings.Join(AvailableFormatterNames(), ", "))
}

// AvailableFormatterNames returns the canonical formatter names, sorted.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys, sorted.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExtensionFor returns the report file extension for a format name or alias.
func ExtensionFor(name string) string {
	switch NormalizeFormatName(name) {
	case "csv":
		return "csv"
	case "json":
		return "json"
	case "xlsx":
		return "xlsx"
	default:
		return "txt"
	}
}

// WriteFormatted runs a formatter and writes its output to a timestamped
// report file in dir, returning the written path.
func WriteFormatted(f Formatter, trajectory *domain.Trajectory, dir string) (string, error) {
	data, err := f.Format(trajectory)
	if err != nil {
		return "", errors.Wrapf(err, "format %s", f.Name())
	}
	filename := fmt.Sprintf("trajectory_report_%s.%s",
		time.Now().Format("20060102_150405"), ExtensionFor(f.Name()))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// WriteReport resolves the named format and writes a single report file.
func WriteReport(trajectory *domain.Trajectory, format, dir string) (string, error) {
	f, err := GetFormatterByName(format)
	if err != nil {
		return "", err
	}
	return WriteFormatted(f, trajectory, dir)
}

// WriteAllReports writes one report per built-in formatter, returning the
// paths written before any failure.
func WriteAllReports(trajectory *domain.Trajectory, dir string) ([]string, error) {
	paths := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		path, err := WriteFormatted(f, trajectory, dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
