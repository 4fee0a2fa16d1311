package geom

// Winding is the traversal direction of a closed loop. It determines
// the sign of the enclosed area and the outward-normal convention.
type Winding int

const (
	// CCW is counter-clockwise traversal; encloses positive area.
	CCW Winding = iota
	// CW is clockwise traversal; encloses negative area.
	CW
)

// Opposite returns the reversed winding.
func (w Winding) Opposite() Winding {
	if w == CCW {
		return CW
	}
	return CCW
}

func (w Winding) String() string {
	if w == CCW {
		return "ccw"
	}
	return "cw"
}
