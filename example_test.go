package sluice_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/dsl"
	"github.com/aretw0/sluice/pkg/ports"
)

// ExampleEditor demonstrates how every edit flows through to the display sinks.
func ExampleEditor() {
	display := ports.NotifierFunc(func(_ context.Context, id string, v float64) error {
		fmt.Printf("%s = %g\n", id, v)
		return nil
	})
	ed := sluice.New(sluice.WithNotifiers(display))

	// Nodes alone already produce a pass: an unfed Combinator reads 0.
	if _, err := ed.AddValue("a", 1); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.AddValue("b", 1); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.AddCombinator("sum"); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.Connect("a", "value", "sum", "a"); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.Connect("b", "value", "sum", "b"); err != nil {
		log.Fatal(err)
	}
	if err := ed.SetValue("a", 5); err != nil {
		log.Fatal(err)
	}

	// Output:
	// sum = 0
	// sum = 1
	// sum = 2
	// sum = 6
}

// ExampleEditor_Load builds a definition in code and loads it in one pass.
func ExampleEditor_Load() {
	b := dsl.New("chain")
	b.Value("a", 2).To("s1", "a")
	b.Value("b", 3).To("s1", "b")
	b.Value("c", 4).To("s2", "b")
	b.Combinator("s1").To("s2", "a")
	b.Combinator("s2")

	def, err := b.Definition()
	if err != nil {
		log.Fatal(err)
	}

	ed := sluice.New()
	if err := ed.Load(context.Background(), def); err != nil {
		log.Fatal(err)
	}
	results := ed.Results()
	fmt.Println(results["s1"], results["s2"])

	// Output:
	// 5 9
}
