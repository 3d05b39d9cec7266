package tracer

// TwoArm records, for one grid corner, the polygons meeting there and the
// in-progress arcs passing through it. Two rows of arms (the current row
// and the previous row) are enough state to trace every ring in a single
// streaming pass — hence "two-arm chains".
type TwoArm struct {
	Row, Col Index

	PolyInside *RPolygon
	PolyAbove  *RPolygon
	PolyLeft   *RPolygon

	ArcHorOuter IndexedArc
	ArcHorInner IndexedArc
	ArcVerInner IndexedArc
	ArcVerOuter IndexedArc

	SolidHorizontal bool
	SolidVertical   bool
}

// connection bit positions within the 4-bit arm-connection type, matching
// gdal::polygonizer::ProcessArmConnections exactly.
const (
	bitCurHoriz = 0
	bitCurVert  = 1
	bitLeft     = 2
	bitAbove    = 3
)

const (
	virtualArm = 0
	solidArm   = 1
)

func connType(above, left, curVert, curHoriz bool) int {
	toBit := func(b bool) int {
		if b {
			return solidArm
		}
		return virtualArm
	}
	return toBit(above)<<bitAbove | toBit(left)<<bitLeft | toBit(curVert)<<bitCurVert | toBit(curHoriz)<<bitCurHoriz
}

// processArmConnections implements the 16-case per-corner decision table
// (12 valid cases, 4 impossible) from Teng/Wang/Liu's two-arm-chains
// algorithm: given which of the four arms meeting at this corner are
// "solid" (polygon boundary) versus "virtual" (interior, no boundary), it
// creates, passes, closes or appends to arcs as required.
//
// It is a direct, case-for-case port of the GDAL reference implementation
// (gdal::polygonizer::ProcessArmConnections); the case numbers in the
// comments are the connection-type values from that source and the
// accompanying diagram in polygonize_polygonizer.cpp.
func processArmConnections(current, above, left *TwoArm) {
	current.PolyInside.updateBottomRightPos(current.Row, current.Col)
	current.SolidVertical = current.PolyInside != left.PolyInside
	current.SolidHorizontal = current.PolyInside != above.PolyInside
	current.PolyAbove = above.PolyInside
	current.PolyLeft = left.PolyInside

	typ := connType(above.SolidVertical, left.SolidHorizontal, current.SolidVertical, current.SolidHorizontal)

	pt := Point{Row: current.Row, Col: current.Col}

	switch typ {
	case 0:
		// all four arms virtual: nothing to do

	case 3:
		// add inner arcs
		current.ArcVerInner = current.PolyInside.NewArc(true)
		current.ArcHorInner = current.PolyInside.NewArc(false)
		current.PolyInside.SetConnection(current.ArcHorInner, current.ArcVerInner)
		current.ArcVerInner.Append(pt)

		// add outer arcs
		current.ArcHorOuter = above.PolyInside.NewArc(true)
		current.ArcVerOuter = above.PolyInside.NewArc(false)
		above.PolyInside.SetConnection(current.ArcVerOuter, current.ArcHorOuter)
		current.ArcHorOuter.Append(pt)

	case 5:
		// pass arcs
		current.ArcHorInner = left.ArcHorInner
		current.ArcHorOuter = left.ArcHorOuter

	case 6:
		// pass arcs
		current.ArcVerInner = left.ArcHorOuter
		current.ArcVerOuter = left.ArcHorInner
		current.ArcVerInner.Append(pt)
		current.ArcVerOuter.Append(pt)

	case 7:
		// pass arcs
		current.ArcHorOuter = left.ArcHorOuter
		current.ArcVerOuter = left.ArcHorInner
		left.ArcHorInner.Append(pt)

		// add inner arcs
		current.ArcVerInner = current.PolyInside.NewArc(true)
		current.ArcHorInner = current.PolyInside.NewArc(false)
		current.PolyInside.SetConnection(current.ArcHorInner, current.ArcVerInner)
		current.ArcVerInner.Append(pt)

	case 9:
		// pass arcs
		current.ArcHorOuter = above.ArcVerInner
		current.ArcHorInner = above.ArcVerOuter
		current.ArcHorOuter.Append(pt)
		current.ArcHorInner.Append(pt)

	case 10:
		// pass arcs
		current.ArcVerInner = above.ArcVerInner
		current.ArcVerOuter = above.ArcVerOuter

	case 11:
		// pass arcs
		current.ArcHorOuter = above.ArcVerInner
		current.ArcVerOuter = above.ArcVerOuter
		current.ArcHorOuter.Append(pt)

		// add inner arcs
		current.ArcVerInner = current.PolyInside.NewArc(true)
		current.ArcHorInner = current.PolyInside.NewArc(false)
		current.PolyInside.SetConnection(current.ArcHorInner, current.ArcVerInner)
		current.ArcVerInner.Append(pt)

	case 12:
		// close arcs
		left.ArcHorOuter.Append(pt)
		left.PolyAbove.SetConnection(left.ArcHorOuter, above.ArcVerOuter)
		// close arcs
		above.ArcVerInner.Append(pt)
		current.PolyInside.SetConnection(above.ArcVerInner, left.ArcHorInner)

	case 13:
		// close arcs
		left.ArcHorOuter.Append(pt)
		left.PolyAbove.SetConnection(left.ArcHorOuter, above.ArcVerOuter)
		// pass arcs
		current.ArcHorOuter = above.ArcVerInner
		current.ArcHorInner = left.ArcHorInner
		current.ArcHorOuter.Append(pt)

	case 14:
		// close arcs
		left.ArcHorOuter.Append(pt)
		left.PolyAbove.SetConnection(left.ArcHorOuter, above.ArcVerOuter)
		// pass arcs
		current.ArcVerInner = above.ArcVerInner
		current.ArcVerOuter = left.ArcHorInner
		current.ArcVerOuter.Append(pt)

	case 15:
		// Two pixels of the main diagonal belong to the same polygon.
		if above.PolyLeft == current.PolyInside {
			// pass arcs
			current.ArcVerInner = left.ArcHorOuter
			current.ArcHorInner = above.ArcVerOuter
			current.ArcVerInner.Append(pt)
			current.ArcHorInner.Append(pt)
		} else {
			// close arcs
			left.ArcHorOuter.Append(pt)
			left.PolyAbove.SetConnection(left.ArcHorOuter, above.ArcVerOuter)
			// add inner arcs
			current.ArcVerInner = current.PolyInside.NewArc(true)
			current.ArcHorInner = current.PolyInside.NewArc(false)
			current.PolyInside.SetConnection(current.ArcHorInner, current.ArcVerInner)
			current.ArcVerInner.Append(pt)
		}

		// Two pixels of the secondary diagonal belong to the same polygon.
		if above.PolyInside == left.PolyInside {
			// close arcs
			above.PolyInside.SetConnection(above.ArcVerInner, left.ArcHorInner)
			above.ArcVerInner.Append(pt)
			// add outer arcs
			current.ArcHorOuter = above.PolyInside.NewArc(true)
			current.ArcVerOuter = above.PolyInside.NewArc(false)
			current.ArcHorOuter.Append(pt)
			above.PolyInside.SetConnection(current.ArcVerOuter, current.ArcHorOuter)
		} else {
			// pass arcs
			current.ArcHorOuter = above.ArcVerInner
			current.ArcVerOuter = left.ArcHorInner
			current.ArcHorOuter.Append(pt)
			current.ArcVerOuter.Append(pt)
		}

	default:
		// Connection types 1, 2, 4 and 8 cannot occur: each has exactly
		// one solid arm, which would require a boundary to begin or end
		// at this corner rather than at another boundary.
		panic("tracer: impossible arm connection type")
	}
}
