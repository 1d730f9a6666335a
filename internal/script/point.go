package script

import (
	"fmt"

	"pdf-annotator/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// Point is a display-space position, written [x, y] or {x: .., y: ..}.
type Point geometry.Point2D

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: point needs 2 coordinates, got %d", value.Line, len(xy))
		}
		*p = Point{X: xy[0], Y: xy[1]}
		return nil
	case yaml.MappingNode:
		var pt geometry.Point2D
		if err := value.Decode(&pt); err != nil {
			return err
		}
		*p = Point(pt)
		return nil
	}
	return fmt.Errorf("line %d: point must be [x, y] or {x, y}", value.Line)
}

func (p Point) point2D() geometry.Point2D {
	return geometry.Point2D(p)
}
