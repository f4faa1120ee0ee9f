package domain

import "fmt"

// Connection is a directed edge from an output port of one node to an input
// port of another. Its identity is the ordered pair of endpoints.
type Connection struct {
	Source       string `json:"source" yaml:"source"`
	SourceOutput string `json:"source_output" yaml:"source_output"`
	Target       string `json:"target" yaml:"target"`
	TargetInput  string `json:"target_input" yaml:"target_input"`
}

// Connect is a shorthand constructor mirroring the editor call order
// (source, output, target, input).
func Connect(source, output, target, input string) Connection {
	return Connection{
		Source:       source,
		SourceOutput: output,
		Target:       target,
		TargetInput:  input,
	}
}

// ID returns the stable identifier of the connection, e.g. "a.value->sum.a".
func (c Connection) ID() string {
	return fmt.Sprintf("%s.%s->%s.%s", c.Source, c.SourceOutput, c.Target, c.TargetInput)
}

func (c Connection) String() string {
	return c.ID()
}
