package pitch

import (
	"math"
	"sync"
)

// interpMax is number of rows in interpolation tables.
const interpMax = 256

var (
	tablesOnce   sync.Once
	coeffLinear  [interpMax][2]float64
	coeff4th     [interpMax][4]float64
	coeff7th     [interpMax][7]float64
	sinc7thTaps  = 7
	sinc7thShift = 3
)

func initTables() {
	tablesOnce.Do(func() {
		for i := 0; i < interpMax; i++ {
			x := float64(i) / float64(interpMax)

			coeffLinear[i][0] = 1.0 - x
			coeffLinear[i][1] = x

			coeff4th[i][0] = x * (-0.5 + x*(1-0.5*x))
			coeff4th[i][1] = 1.0 + x*x*(1.5*x-2.5)
			coeff4th[i][2] = x * (0.5 + x*(2.0-1.5*x))
			coeff4th[i][3] = 0.5 * x * x * (x - 1.0)

			var sum float64
			for k := 0; k < sinc7thTaps; k++ {
				d := float64(k-sinc7thShift) - x
				var v float64
				if math.Abs(d) < 1e-12 {
					v = 1.0
				} else {
					v = math.Sin(math.Pi*d) / (math.Pi * d)
				}
				v *= 0.5 * (1.0 + math.Cos(2.0*math.Pi*d/float64(sinc7thTaps)))
				coeff7th[i][k] = v
				sum += v
			}
			for k := 0; k < sinc7thTaps; k++ {
				coeff7th[i][k] /= sum
			}
		}
	})
}

func tableRow(fract float64) int {
	row := int(fract * interpMax)
	if row >= interpMax {
		row = interpMax - 1
	}
	return row
}

// FluidInterpolateNoneUtil reads the nearest source frame.
type FluidInterpolateNoneUtil struct {
	Params
}

// NewFluidInterpolateNoneUtil returns util with default params.
func NewFluidInterpolateNoneUtil() *FluidInterpolateNoneUtil {
	return &FluidInterpolateNoneUtil{Params: defaultParams()}
}

// Pitch source into destination.
func (u *FluidInterpolateNoneUtil) Pitch() {
	u.resample(func(index int, fract float64) float64 {
		if fract >= 0.5 {
			return u.at(index + 1)
		}
		return u.at(index)
	})
}

// FluidInterpolateLinearUtil interpolates between two frames.
type FluidInterpolateLinearUtil struct {
	Params
}

// NewFluidInterpolateLinearUtil returns util with default params.
func NewFluidInterpolateLinearUtil() *FluidInterpolateLinearUtil {
	return &FluidInterpolateLinearUtil{Params: defaultParams()}
}

// Pitch source into destination.
func (u *FluidInterpolateLinearUtil) Pitch() {
	initTables()
	u.resample(func(index int, fract float64) float64 {
		c := coeffLinear[tableRow(fract)]
		return c[0]*u.at(index) + c[1]*u.at(index+1)
	})
}

// FluidInterpolate4thOrderUtil interpolates with a 4 point cubic.
type FluidInterpolate4thOrderUtil struct {
	Params
}

// NewFluidInterpolate4thOrderUtil returns util with default params.
func NewFluidInterpolate4thOrderUtil() *FluidInterpolate4thOrderUtil {
	return &FluidInterpolate4thOrderUtil{Params: defaultParams()}
}

// Pitch source into destination.
func (u *FluidInterpolate4thOrderUtil) Pitch() {
	initTables()
	u.resample(func(index int, fract float64) float64 {
		c := coeff4th[tableRow(fract)]
		return c[0]*u.at(index-1) + c[1]*u.at(index) + c[2]*u.at(index+1) + c[3]*u.at(index+2)
	})
}

// FluidInterpolate7thOrderUtil interpolates with a 7 point windowed sinc.
type FluidInterpolate7thOrderUtil struct {
	Params
}

// NewFluidInterpolate7thOrderUtil returns util with default params.
func NewFluidInterpolate7thOrderUtil() *FluidInterpolate7thOrderUtil {
	return &FluidInterpolate7thOrderUtil{Params: defaultParams()}
}

// Pitch source into destination.
func (u *FluidInterpolate7thOrderUtil) Pitch() {
	initTables()
	u.resample(func(index int, fract float64) float64 {
		c := coeff7th[tableRow(fract)]
		var v float64
		for k := 0; k < sinc7thTaps; k++ {
			v += c[k] * u.at(index+k-sinc7thShift)
		}
		return v
	})
}
