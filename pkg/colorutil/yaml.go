package colorutil

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts "#rrggbb" or a [r, g, b] sequence.
func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return c.UnmarshalText([]byte(value.Value))
	case yaml.SequenceNode:
		var parts []int
		if err := value.Decode(&parts); err != nil {
			return err
		}
		if len(parts) != 3 {
			return fmt.Errorf("line %d: colour needs 3 components, got %d", value.Line, len(parts))
		}
		v, err := NewRGB(parts[0], parts[1], parts[2])
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	return fmt.Errorf("line %d: colour must be a hex string or [r, g, b]", value.Line)
}

// MarshalYAML writes the colour as a hex string.
func (c RGB) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}
