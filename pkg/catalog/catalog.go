// Package catalog discovers 3D model assets for scene generation. Top-level
// subdirectories of the models root name object classes; files within them
// are asset references handed to the external engine. The label set is fixed
// for the lifetime of a run: class ids are indexes into the sorted directory
// order and double as line numbers in the persisted classes.txt.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// ErrNoClasses is returned when the models root holds no class directories.
var ErrNoClasses = errors.New("catalog: no model classes found")

// Error describes a class directory that cannot serve generation, such as a
// class with zero usable assets. Fatal before generation begins.
type Error struct {
	Class  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("catalog: class %q: %s", e.Class, e.Reason)
}

// assetExtensions are the file types the external engine accepts as scene
// objects. Discovery ignores everything else.
var assetExtensions = map[string]bool{
	".glb":  true,
	".gltf": true,
	".obj":  true,
	".fbx":  true,
	".stl":  true,
	".ply":  true,
}

// Class is one object class: a label and its asset file paths, both fixed
// after discovery. Paths are relative to the models root.
type Class struct {
	ID     int
	Name   string
	Assets []string
}

// Catalog maps class labels to asset lists. Immutable after discovery and
// safe for concurrent readers.
type Catalog struct {
	classes []Class
	byName  map[string]int
}

// Discover walks the models directory on the OS filesystem.
func Discover(root string) (*Catalog, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: models directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog: %s is not a directory", root)
	}
	return DiscoverFS(os.DirFS(root))
}

// DiscoverFS builds a catalog from any fs.FS whose top-level directories are
// class labels. Classes are ordered by name so ids are stable across runs,
// and every class must contain at least one asset.
func DiscoverFS(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("catalog: read models root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, ErrNoClasses
	}
	sort.Strings(names)

	cat := &Catalog{byName: make(map[string]int, len(names))}
	for _, name := range names {
		assets, err := collectAssets(fsys, name)
		if err != nil {
			return nil, err
		}
		if len(assets) == 0 {
			return nil, &Error{Class: name, Reason: "contains no model assets"}
		}
		id := len(cat.classes)
		cat.classes = append(cat.classes, Class{ID: id, Name: name, Assets: assets})
		cat.byName[name] = id
	}
	return cat, nil
}

func collectAssets(fsys fs.FS, class string) ([]string, error) {
	var assets []string
	err := fs.WalkDir(fsys, class, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if assetExtensions[strings.ToLower(path.Ext(p))] {
			assets = append(assets, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: walk class %q: %w", class, err)
	}
	sort.Strings(assets)
	return assets, nil
}

// Classes returns the classes in id order.
func (c *Catalog) Classes() []Class {
	out := make([]Class, len(c.classes))
	copy(out, c.classes)
	return out
}

// ClassNames returns the labels in id order, matching classes.txt lines.
func (c *Catalog) ClassNames() []string {
	names := make([]string, len(c.classes))
	for i, cl := range c.classes {
		names[i] = cl.Name
	}
	return names
}

// ClassID resolves a label to its id.
func (c *Catalog) ClassID(name string) (int, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Class returns the class with the given id.
func (c *Catalog) Class(id int) (Class, bool) {
	if id < 0 || id >= len(c.classes) {
		return Class{}, false
	}
	return c.classes[id], true
}

// Len returns the number of classes.
func (c *Catalog) Len() int {
	return len(c.classes)
}
