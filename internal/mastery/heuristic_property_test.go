package mastery_test

import (
	"testing"

	"github.com/certbloom/certbloom/internal/mastery"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNextProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	p := mastery.DefaultPolicy()

	properties.Property("incorrect outcomes never raise mastery", prop.ForAll(
		func(current float64, items int, first bool) bool {
			return p.Next(current, items, false, first) <= current
		},
		gen.Float64Range(0, 1),
		gen.IntRange(-2, 50),
		gen.Bool(),
	))

	properties.Property("mastery never decreases and stays within [0,1]", prop.ForAll(
		func(current float64, items int, correct, first bool) bool {
			next := p.Next(current, items, correct, first)
			return next >= current && next >= 0 && next <= 1
		},
		gen.Float64Range(0, 1),
		gen.IntRange(-2, 50),
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("richer topics gain at least as much on first exposure", prop.ForAll(
		func(a, b int) bool {
			if a > b {
				a, b = b, a
			}
			return p.Next(0, b, true, true) >= p.Next(0, a, true, true)
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
