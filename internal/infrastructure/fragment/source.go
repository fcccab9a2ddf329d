package fragment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/ports"
)

// DirSource reads fragment definitions from a directory of YAML files.
// Files load in lexical order, so numeric prefixes set the sequence.
type DirSource struct {
	dir      string
	fallback fs.FS
}

// NewDirSource reads from dir. When dir does not exist, fallback (if any)
// is read instead; callers pass the embedded default fragments.
func NewDirSource(dir string, fallback fs.FS) *DirSource {
	return &DirSource{dir: dir, fallback: fallback}
}

// Location reports where fragments are read from.
func (s *DirSource) Location() string {
	if s.usingFallback() {
		return "embedded defaults"
	}
	return s.dir
}

// Fragments implements ports.FragmentSource.
func (s *DirSource) Fragments(ctx context.Context) ([]domain.FragmentDefinition, error) {
	fsys, prefix := s.filesystem()
	if fsys == nil {
		return nil, nil
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read fragments dir %s: %w", s.Location(), err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isFragmentFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	defs := make([]domain.FragmentDefinition, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read fragment %s: %w", name, err)
		}
		def, err := ParseDefinition(data, prefix+name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("%w: %s: fragment %q already defined in %s", domain.ErrFragmentInvalid, def.Source, def.Name, prev)
		}
		seen[def.Name] = def.Source
		defs = append(defs, def)
	}
	return defs, nil
}

// ParseDefinition decodes and validates one fragment file.
func ParseDefinition(data []byte, source string) (domain.FragmentDefinition, error) {
	var def domain.FragmentDefinition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return domain.FragmentDefinition{}, fmt.Errorf("%w: %s: %v", domain.ErrFragmentInvalid, source, err)
	}
	def.Source = source
	if strings.TrimSpace(def.Name) == "" {
		def.Name = domain.FragmentNameFromFile(source)
	}
	if err := validate(def); err != nil {
		return domain.FragmentDefinition{}, fmt.Errorf("%w: %s: %v", domain.ErrFragmentInvalid, source, err)
	}
	return def, nil
}

func validate(def domain.FragmentDefinition) error {
	names := make(map[string]bool)
	for i, w := range def.Wrappers {
		if strings.TrimSpace(w.Name) == "" {
			return fmt.Errorf("wrapper #%d has no name", i+1)
		}
		if strings.TrimSpace(w.Command) == "" {
			return fmt.Errorf("wrapper %s has no command", w.Name)
		}
		if _, err := SplitArgs(w.Args); err != nil {
			return fmt.Errorf("wrapper %s: %v", w.Name, err)
		}
		for _, name := range append([]string{w.Name}, w.Aliases...) {
			if names[name] {
				return fmt.Errorf("name %s declared twice", name)
			}
			names[name] = true
		}
	}
	return nil
}

func (s *DirSource) usingFallback() bool {
	if s.dir == "" {
		return s.fallback != nil
	}
	_, err := os.Stat(s.dir)
	return errors.Is(err, fs.ErrNotExist) && s.fallback != nil
}

func (s *DirSource) filesystem() (fs.FS, string) {
	if s.usingFallback() {
		return s.fallback, "embedded/"
	}
	if s.dir == "" {
		return nil, ""
	}
	return os.DirFS(s.dir), s.dir + string(os.PathSeparator)
}

func isFragmentFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

var _ ports.FragmentSource = (*DirSource)(nil)
