package plasma

import "math"

// WaveTerm is a single periodic contributor to the field:
//
//	Amplitude * sin(2π(KX·x + KY·y) + 2π·Temporal·frame/loop + Phase)
type WaveTerm struct {
	Amplitude float64 `json:"a"`
	KX        int     `json:"kx"`
	KY        int     `json:"ky"`
	Phase     float64 `json:"p"`
	Temporal  int     `json:"t"`
}

func (w WaveTerm) Validate() error {
	switch {
	case !(w.Amplitude > 0) || math.IsInf(w.Amplitude, 0):
		return invalid("amplitude", "%v is not a positive finite number", w.Amplitude)
	case w.KX < 1 || w.KY < 1:
		return invalid("spatial frequency", "(%d, %d) must both be >= 1", w.KX, w.KY)
	case w.Temporal < 1:
		return invalid("temporal frequency", "%d must be >= 1", w.Temporal)
	case !(w.Phase >= 0 && w.Phase < 2*math.Pi):
		return invalid("phase", "%v outside [0, 2π)", w.Phase)
	}
	return nil
}

// WrapPhase maps any angle onto [0, 2π).
func WrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	if p >= 2*math.Pi {
		p = 0
	}
	return p
}

// ColumnAngle is the part of a term's argument that depends only on x.
func ColumnAngle(w WaveTerm, x float64) float64 {
	return 2*math.Pi*float64(w.KX)*x + w.Phase
}

// RowAngle is the part of a term's argument that depends only on y.
func RowAngle(w WaveTerm, y float64) float64 {
	return 2 * math.Pi * float64(w.KY) * y
}

// termValue expands a·sin(X+Y+T) from the sines and cosines of its three angles.
// Field.At and Grid.Row both go through here so their results are bit-identical.
func termValue(a, sx, cx, sy, cy, st, ct float64) float64 {
	sinS := sx*cy + cx*sy
	cosS := cx*cy - sx*sy
	return a * (sinS*ct + cosS*st)
}
