package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// MaxStrain tracks the largest absolute spring strain seen during a run,
// optionally restricted to a subset of springs.
type MaxStrain struct {
	name    string
	springs []int
	max     float64
}

func NewMaxStrain(springs []int) *MaxStrain {
	return &MaxStrain{name: "max_strain", springs: springs}
}

func (m *MaxStrain) Name() string { return m.name }

func (m *MaxStrain) Observe(sys *cloth.System, t float64) {
	m.max = math.Max(m.max, FrameMaxStrain(sys, m.springs))
}

func (m *MaxStrain) Value() float64 { return m.max }

func (m *MaxStrain) Reset() { m.max = 0 }

// FrameMaxStrain returns max |strain| over springs, or over every spring when
// springs is nil.
func FrameMaxStrain(sys *cloth.System, springs []int) float64 {
	var worst float64
	if springs == nil {
		for i := range sys.Springs {
			worst = math.Max(worst, math.Abs(sys.Strain(i)))
		}
		return worst
	}
	for _, i := range springs {
		worst = math.Max(worst, math.Abs(sys.Strain(i)))
	}
	return worst
}
