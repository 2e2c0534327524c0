package meshload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// PrimitivePrefix selects a built-in shape, e.g. "primitive:cube"
const PrimitivePrefix = "primitive:"

// ErrUnsupported is returned for names the loader has no decoder for
var ErrUnsupported = errors.New("unsupported model format")

// DefaultColor is used when a model carries no color of its own
var DefaultColor = mgl32.Vec3{0.8, 0.8, 0.8}

// Loader resolves model names to assets. Relative names are read from the
// asset filesystem, absolute paths (dropped files) from the OS.
type Loader struct {
	assets     fs.FS
	cache      map[string]*Asset
	modelCache map[string]*ElementModel
}

func NewLoader(assets fs.FS) *Loader {
	return &Loader{
		assets:     assets,
		cache:      make(map[string]*Asset),
		modelCache: make(map[string]*ElementModel),
	}
}

// Load returns the asset for name, decoding it on first use
func (l *Loader) Load(name string) (*Asset, error) {
	if a, ok := l.cache[name]; ok {
		return a, nil
	}
	a, err := l.decode(name)
	if err != nil {
		return nil, err
	}
	l.cache[name] = a
	return a, nil
}

// Reload decodes name again, replacing any cached copy. Used for dropped
// files, which may have changed on disk since the last drop.
func (l *Loader) Reload(name string) (*Asset, error) {
	delete(l.cache, name)
	for k := range l.modelCache {
		delete(l.modelCache, k)
	}
	return l.Load(name)
}

func (l *Loader) decode(name string) (*Asset, error) {
	if kind, ok := strings.CutPrefix(name, PrimitivePrefix); ok {
		return Primitive(PrimitiveType(kind))
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".obj":
		data, err := l.read(name)
		if err != nil {
			return nil, err
		}
		g, err := ParseOBJ(strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("could not parse obj %s: %w", name, err)
		}
		return &Asset{Name: baseName(name), Geometry: *g, Material: Material{Color: DefaultColor}}, nil
	case ".json":
		model, err := l.LoadElementModel(name)
		if err != nil {
			return nil, err
		}
		g, err := model.Geometry()
		if err != nil {
			return nil, fmt.Errorf("could not build model %s: %w", name, err)
		}
		color := DefaultColor
		if model.Color != nil {
			color = mgl32.Vec3(*model.Color)
		}
		return &Asset{Name: baseName(name), Geometry: *g, Material: Material{Color: color}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
}

// LoadElementModel reads a JSON element model and resolves its parent chain.
// Parent names are relative to the child's directory, without extension.
func (l *Loader) LoadElementModel(name string) (*ElementModel, error) {
	return l.loadElementModel(name, 0)
}

func (l *Loader) loadElementModel(name string, depth int) (*ElementModel, error) {
	if depth > 8 {
		return nil, fmt.Errorf("model parent chain too deep at %s", name)
	}
	if model, ok := l.modelCache[name]; ok {
		return model, nil
	}

	data, err := l.read(name)
	if err != nil {
		return nil, err
	}

	var model ElementModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal model json: %w", err)
	}

	if model.Parent != "" {
		parentName := siblingPath(name, model.Parent+".json")
		parent, err := l.loadElementModel(parentName, depth+1)
		if err != nil {
			return nil, fmt.Errorf("could not load parent model '%s': %w", model.Parent, err)
		}
		if len(model.Elements) == 0 {
			model.Elements = append([]Element(nil), parent.Elements...)
		}
		if model.Color == nil {
			model.Color = parent.Color
		}
	}

	l.modelCache[name] = &model
	return &model, nil
}

func (l *Loader) read(name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if filepath.IsAbs(name) {
		data, err = os.ReadFile(name)
	} else {
		data, err = fs.ReadFile(l.assets, filepath.ToSlash(name))
	}
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}
	return data, nil
}

func siblingPath(name, rel string) string {
	if filepath.IsAbs(name) {
		return filepath.Join(filepath.Dir(name), rel)
	}
	return path.Join(path.Dir(filepath.ToSlash(name)), rel)
}

func baseName(name string) string {
	b := filepath.Base(name)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
