package mathx

import "golang.org/x/exp/constraints"

// MapInt maps x in [inMin,inMax] linearly onto [outMin,outMax].
// x is clamped to the input range first; the result is truncated toward outMin.
func MapInt[T constraints.Signed](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	x = Clamp(x, inMin, inMax)
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}
