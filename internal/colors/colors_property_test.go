package colors

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestResolve_RGBTriples verifies every in-range RGB triple resolves.
func TestResolve_RGBTriples(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("RGB triples in [0,255] resolve", prop.ForAll(
		func(r, g, b int) bool {
			c, err := Resolve([]int{r, g, b}, RGB)
			if err != nil {
				return false
			}
			return int(c.R) == r && int(c.G) == g && int(c.B) == b && c.Model == RGB
		},
		gen.IntRange(0, 255),
		gen.IntRange(0, 255),
		gen.IntRange(0, 255),
	))

	properties.TestingRun(t)
}

// TestResolve_RGBWrongLength verifies 2- and 4-element lists fail under RGB.
func TestResolve_RGBWrongLength(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("RGB rejects channel lists of length 2 or 4", prop.ForAll(
		func(values []int, four bool) bool {
			n := 2
			if four {
				n = 4
			}
			_, err := Resolve(values[:n], RGB)
			return err == ErrRGBChannels
		},
		gen.SliceOfN(4, gen.IntRange(0, 255)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestResolve_CMYKRange verifies the CMYK range boundary.
func TestResolve_CMYKRange(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("CMYK channels resolve iff all are within 0..100", prop.ForAll(
		func(c, m, y, k int) bool {
			_, err := Resolve([]int{c, m, y, k}, CMYK)
			inRange := func(v int) bool { return v >= 0 && v <= MaxCMYK }
			valid := inRange(c) && inRange(m) && inRange(y) && inRange(k)
			return valid == (err == nil)
		},
		gen.IntRange(-20, 120),
		gen.IntRange(-20, 120),
		gen.IntRange(-20, 120),
		gen.IntRange(-20, 120),
	))

	properties.TestingRun(t)
}
