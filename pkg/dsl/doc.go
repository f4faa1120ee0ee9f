/*
Package dsl provides a Go DSL for programmatically constructing sluice graph definitions.

It replaces a YAML or HCL file with a type-safe, fluent builder, which is handy
for tests, generated graphs and IDE autocompletion.

Example usage:

	b := dsl.New("add")
	b.Value("a", 1).To("sum", "a")
	b.Value("b", 1).To("sum", "b")
	b.Combinator("sum")

	loader, err := b.Build() // a ports.DefinitionLoader
*/
package dsl
