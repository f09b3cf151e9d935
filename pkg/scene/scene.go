// Package scene loads widget scene descriptions from YAML. Scenes are the
// input format for the hitbench tool and double as test fixtures: a flat
// list of rectangles with z-indexes, already laid out by whatever produced
// the file.
package scene

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/spatial/pkg/errors"
	"github.com/go-drift/spatial/pkg/geometry"
	"github.com/go-drift/spatial/pkg/hittest"
)

// SupportedVersion is the scene format major version this package reads.
const SupportedVersion = "v1"

// Scene is a parsed scene file.
type Scene struct {
	// Version is the scene format version, a semver string ("v1",
	// "v1.2.0"). Empty means SupportedVersion.
	Version string    `yaml:"version,omitempty"`
	Widgets []*Widget `yaml:"widgets"`
}

// Widget is one rectangle in a scene. It implements hittest.Widget;
// scenes hand out *Widget pointers so identity is pointer identity.
type Widget struct {
	ID     string  `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Z      int     `yaml:"z,omitempty"`
}

// HitRect returns the widget's bounding rectangle.
func (w *Widget) HitRect() geometry.Rect {
	return geometry.RectFromLTWH(w.X, w.Y, w.Width, w.Height)
}

// ZIndex returns the widget's paint-order key.
func (w *Widget) ZIndex() int {
	return w.Z
}

// Label returns the widget's id for snapshot rendering.
func (w *Widget) Label() string {
	return w.ID
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.SceneError{Path: path, Err: err}
	}
	s, err := Parse(data)
	if err != nil {
		if se, ok := err.(*errors.SceneError); ok {
			se.Path = path
			return nil, se
		}
		return nil, &errors.SceneError{Path: path, Err: err}
	}
	return s, nil
}

// Parse decodes and validates a scene from YAML bytes.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &errors.SceneError{Err: err}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	if err := validateVersion(s.Version); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(s.Widgets))
	for i, w := range s.Widgets {
		if w == nil {
			return &errors.SceneError{
				Field: fmt.Sprintf("widgets[%d]", i),
				Err:   fmt.Errorf("empty widget entry"),
			}
		}
		if w.ID == "" {
			return &errors.SceneError{
				Field: fmt.Sprintf("widgets[%d].id", i),
				Err:   fmt.Errorf("missing id"),
			}
		}
		if _, dup := seen[w.ID]; dup {
			return &errors.SceneError{
				Field: fmt.Sprintf("widgets[%d].id", i),
				Err:   fmt.Errorf("duplicate id %q", w.ID),
			}
		}
		seen[w.ID] = struct{}{}
		if w.Width < 0 || w.Height < 0 {
			return &errors.SceneError{
				Field: fmt.Sprintf("widgets[%d]", i),
				Err:   fmt.Errorf("widget %q has negative size %gx%g", w.ID, w.Width, w.Height),
			}
		}
	}
	return nil
}

// validateVersion accepts any semver within the supported major version.
func validateVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return &errors.SceneError{
			Field: "version",
			Err:   fmt.Errorf("%q is not a valid semver version", v),
		}
	}
	if semver.Major(v) != SupportedVersion {
		return &errors.SceneError{
			Field: "version",
			Err:   fmt.Errorf("version %s is not supported (want %s.x)", v, SupportedVersion),
		}
	}
	return nil
}

// Handles returns the scene's widgets as hit-test handles, in file order.
func (s *Scene) Handles() []hittest.Widget {
	handles := make([]hittest.Widget, len(s.Widgets))
	for i, w := range s.Widgets {
		handles[i] = w
	}
	return handles
}

// Bounds returns the union of all widget rectangles, or a zero rect for an
// empty scene. The snapshot renderer sizes its canvas from this.
func (s *Scene) Bounds() geometry.Rect {
	if len(s.Widgets) == 0 {
		return geometry.Rect{}
	}
	bounds := s.Widgets[0].HitRect()
	for _, w := range s.Widgets[1:] {
		bounds = bounds.Union(w.HitRect())
	}
	return bounds
}
