package pitch

// FastPitchUtil reads the nearest lower source frame.
type FastPitchUtil struct {
	Params
}

// NewFastPitchUtil returns util with default params.
func NewFastPitchUtil() *FastPitchUtil {
	return &FastPitchUtil{Params: defaultParams()}
}

// Pitch source into destination.
func (u *FastPitchUtil) Pitch() {
	u.resample(func(index int, _ float64) float64 {
		return u.at(index)
	})
}

// HQPitchUtil interpolates with a Catmull-Rom spline.
type HQPitchUtil struct {
	Params
}

// NewHQPitchUtil returns util with default params.
func NewHQPitchUtil() *HQPitchUtil {
	return &HQPitchUtil{Params: defaultParams()}
}

// Pitch source into destination.
func (u *HQPitchUtil) Pitch() {
	u.resample(func(index int, t float64) float64 {
		p0, p1, p2, p3 := u.at(index-1), u.at(index), u.at(index+1), u.at(index+2)
		return p1 + 0.5*t*(p2-p0+t*(2*p0-5*p1+4*p2-p3+t*(3*(p1-p2)+p3-p0)))
	})
}
