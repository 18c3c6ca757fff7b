package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/maypok86/otter"

	"soulminer/internal/logger"
)

// Source enumerates the class corpus and resolves ancestor references that
// live outside it.
type Source interface {
	Classes(ctx context.Context) iter.Seq2[*Class, error]
	Lookup(name string) (*Class, bool)
}

const DefaultCacheSize = 512

type DirOptions struct {
	Paths     []string
	Include   []string
	Exclude   []string
	Natives   map[string]string
	CacheSize int
	Logger    *logger.Logger
}

// Dir reads a directory tree of JSON export files.
type Dir struct {
	roots   []string
	include []glob.Glob
	exclude []glob.Glob
	natives map[string]string
	cache   otter.Cache[string, *Package]
	log     *logger.Logger
}

var _ Source = (*Dir)(nil)

func NewDir(opts DirOptions) (*Dir, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("at least one asset path is required")
	}

	include, err := compileGlobs(opts.Include)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}
	exclude, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := otter.MustBuilder[string, *Package](size).Build()
	if err != nil {
		return nil, fmt.Errorf("building package cache: %w", err)
	}

	natives := make(map[string]string, len(opts.Natives))
	for name, super := range opts.Natives {
		natives[strings.ToLower(name)] = super
	}

	roots := make([]string, 0, len(opts.Paths))
	for _, root := range opts.Paths {
		if strings.TrimSpace(root) == "" {
			continue
		}
		roots = append(roots, filepath.Clean(root))
	}

	return &Dir{
		roots:   roots,
		include: include,
		exclude: exclude,
		natives: natives,
		cache:   cache,
		log:     logger.OrNop(opts.Logger),
	}, nil
}

func (d *Dir) Close() {
	d.cache.Close()
}

// Classes yields every class declared in the corpus, in lexical file order.
// Unreadable trees end the sequence with an error; malformed files are
// logged and skipped.
func (d *Dir) Classes(ctx context.Context) iter.Seq2[*Class, error] {
	return func(yield func(*Class, error) bool) {
		for _, root := range d.roots {
			files, err := d.walk(root)
			if err != nil {
				yield(nil, fmt.Errorf("walking %s: %w", root, err))
				return
			}
			for _, path := range files {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				pkg, err := ParsePackageFile(path)
				if err != nil {
					if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
						yield(nil, fmt.Errorf("reading %s: %w", path, err))
						return
					}
					d.log.Warn("skipping malformed package", "path", path, "error", err)
					continue
				}
				d.cache.Set(path, pkg)
				for _, decl := range pkg.Classes {
					if !yield(d.classFromDecl(path, decl), nil) {
						return
					}
				}
			}
		}
	}
}

// Lookup resolves native classes declared in the schema.
func (d *Dir) Lookup(name string) (*Class, bool) {
	super, ok := d.natives[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return NewClass(name, super, "/Script", nil), true
}

func (d *Dir) classFromDecl(path string, decl ClassDecl) *Class {
	var load func() (*Object, error)
	if decl.DefaultsName != "" {
		defaultsName := decl.DefaultsName
		load = func() (*Object, error) {
			pkg, err := d.pkg(path)
			if err != nil {
				return nil, err
			}
			return pkg.Object(defaultsName)
		}
	}
	class := NewClass(decl.Name, decl.SuperName, path, load)
	class.Abstract = decl.Abstract
	return class
}

func (d *Dir) pkg(path string) (*Package, error) {
	if pkg, ok := d.cache.Get(path); ok {
		return pkg, nil
	}
	pkg, err := ParsePackageFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading package %s: %w", path, err)
	}
	d.cache.Set(path, pkg)
	return pkg, nil
}

func (d *Dir) walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			if rel != "." && matchAny(d.exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			return nil
		}
		if matchAny(d.exclude, rel) {
			return nil
		}
		if len(d.include) > 0 && !matchAny(d.include, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Static is an in-memory source, used by tests and by callers that already
// hold their classes.
type Static struct {
	List    []*Class
	Natives map[string]*Class
}

func (s Static) Classes(ctx context.Context) iter.Seq2[*Class, error] {
	return func(yield func(*Class, error) bool) {
		for _, class := range s.List {
			if !yield(class, nil) {
				return
			}
		}
	}
}

func (s Static) Lookup(name string) (*Class, bool) {
	for key, class := range s.Natives {
		if strings.EqualFold(key, name) {
			return class, true
		}
	}
	return nil, false
}

// StaticObject builds a default-object loader from literal properties.
func StaticObject(name string, props ...Property) func() (*Object, error) {
	obj := &Object{Name: name, Properties: props}
	return func() (*Object, error) { return obj, nil }
}
