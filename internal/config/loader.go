package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/formsync/internal/pathstore"
)

// FileSystem is an abstraction for file system operations so loaders can be
// tested with in-memory file systems such as fstest.MapFS.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format identifies a document syntax.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// decoder parses one document into a tree. source names the document in
// errors.
type decoder func(source string, data []byte) (map[string]any, error)

func decoderFor(f Format) (decoder, error) {
	switch f {
	case FormatTOML:
		return decodeTOML, nil
	case FormatYAML:
		return decodeYAML, nil
	case FormatJSON:
		return decodeJSON, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// DefaultMaxIncludeDepth limits nested @include directives.
const DefaultMaxIncludeDepth = 8

const includeKey = "@include"

// Loader reads default-value documents.
type Loader struct {
	fs       FileSystem
	maxDepth int
	log      *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the file system documents are read from.
func WithFS(fsys FileSystem) LoaderOption {
	return func(l *Loader) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithMaxIncludeDepth sets how deep @include directives may nest.
func WithMaxIncludeDepth(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxDepth = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a loader reading from the OS file system.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:       DefaultFS(),
		maxDepth: DefaultMaxIncludeDepth,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the document at path, resolving @include directives. The
// format follows the file extension.
func (l *Loader) Load(path string) (map[string]any, error) {
	return l.load(path, l.maxDepth)
}

// LoadFromReader reads one document of the given format from r. Includes are
// not resolved since there is no base directory.
func (l *Loader) LoadFromReader(r io.Reader, f Format) (map[string]any, error) {
	dec, err := decoderFor(f)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	tree, err := dec("<reader>", data)
	if err != nil {
		return nil, err
	}
	delete(tree, includeKey)
	return tree, nil
}

func (l *Loader) load(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrIncludeDepthExceeded)
	}
	dec, err := decoderFor(FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	tree, err := dec(path, data)
	if err != nil {
		return nil, err
	}
	l.log.Debug("config loaded", "path", path, "keys", len(tree))

	includes, err := includeList(tree[includeKey])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	delete(tree, includeKey)
	if len(includes) == 0 {
		return tree, nil
	}

	// Included documents are merged first so the including document wins.
	merged := map[string]any{}
	base := filepath.Dir(path)
	for _, inc := range includes {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(base, inc)
		}
		incTree, err := l.load(incPath, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		merged = pathstore.DeepMerge(merged, incTree)
	}
	return pathstore.DeepMerge(merged, tree), nil
}

func includeList(v any) ([]string, error) {
	switch inc := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{inc}, nil
	case []any:
		out := make([]string, 0, len(inc))
		for _, item := range inc {
			s, ok := item.(string)
			if !ok {
				return nil, ErrInvalidInclude
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrInvalidInclude
	}
}

// LoadDefaults reads the document at path from the OS file system.
func LoadDefaults(path string) (map[string]any, error) {
	return NewLoader().Load(path)
}
