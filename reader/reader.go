// Package reader walks the queries directory and yields the raw
// (module_path, module_name, text) triples the parser consumes. It is
// the only stage that touches the filesystem; it runs before any
// database contact, per the pipeline's resource-ordering guarantee.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Module is one unparsed query file: its path on disk, the module name
// derived from the filename, and its raw text.
type Module struct {
	Path string
	Name string
	Text string
}

// ReadError wraps a failure walking the queries directory or reading a
// query file. The root package's Compile folds this into its own IOError
// taxonomy; ReadError stays self-contained so this package doesn't need
// to import back up to the root package that calls it.
type ReadError struct {
	Op    string // "read_dir", "read_file"
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reader: %s %q: %v", e.Op, e.Path, e.Cause)
}

func (e *ReadError) Unwrap() error { return e.Cause }

func newReadError(op, path string, cause error) *ReadError {
	return &ReadError{Op: op, Path: path, Cause: cause}
}

// ReadDir walks dir (non-recursively — subdirectories are not descended
// into) and returns one Module per "*.sql" file, sorted by name so that
// downstream stages see a deterministic file order. Filenames containing
// path separators or extra dots are rejected, matching the external
// interface contract.
func ReadDir(dir string) ([]Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newReadError("read_dir", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		if err := validFileName(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	modules := make([]Module, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, newReadError("read_file", path, err)
		}
		modules = append(modules, Module{
			Path: path,
			Name: strings.TrimSuffix(name, ".sql"),
			Text: string(data),
		})
	}
	return modules, nil
}

// validFileName rejects names with a path separator, or with more than
// one "." (beyond the required ".sql" extension).
func validFileName(name string) error {
	if strings.ContainsAny(name, `/\`) {
		return newReadError("read_dir", name, errInvalidName("contains a path separator"))
	}
	stem := strings.TrimSuffix(name, ".sql")
	if strings.Contains(stem, ".") {
		return newReadError("read_dir", name, errInvalidName("contains an extra '.' beyond the .sql extension"))
	}
	return nil
}

type errInvalidName string

func (e errInvalidName) Error() string { return string(e) }
