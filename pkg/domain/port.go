package domain

// Direction tells whether a port consumes or produces values.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port names used by the built-in node kinds.
const (
	PortValue = "value"
	PortA     = "a"
	PortB     = "b"
)

// Port describes a named slot on a Node.
type Port struct {
	Name      string    `json:"name" yaml:"name"`
	Label     string    `json:"label,omitempty" yaml:"label,omitempty"`
	Direction Direction `json:"direction" yaml:"direction"`
}

var (
	valuePorts = []Port{
		{Name: PortValue, Label: "Number", Direction: DirectionOutput},
	}
	combinatorPorts = []Port{
		{Name: PortA, Label: "Left", Direction: DirectionInput},
		{Name: PortB, Label: "Right", Direction: DirectionInput},
		{Name: PortValue, Label: "Number", Direction: DirectionOutput},
	}
)
