package gte

// Pos is a GTE-native vertex position (SVector without the padding word).
type Pos struct {
	X, Y, Z int16
}

// ScreenVtx is the result of one perspective transform: signed screen
// coordinates and the post-divide depth. SZ == 0 means the vertex is at
// or behind the near plane and must be rejected, never bucketed.
type ScreenVtx struct {
	SX, SY int16
	SZ     uint16
}

// Transform holds the register state of one RTPS/RTPT run: the view
// rotation, view translation, screen offset and projection distance.
type Transform struct {
	Rot Mat3
	// View translation, world units.
	TRX, TRY, TRZ int32
	// Screen offset in 16.16 fixed point (screen center << 16).
	OFX, OFY int32
	// Projection plane distance in screen pixels.
	H uint16
}

// Saturation limits of the hardware registers.
const (
	irMin = -0x8000
	irMax = 0x7FFF
	sxMin = -1024
	sxMax = 1023
	szMax = 0xFFFF
	qMax  = 0x1FFFF
)

// Perspective transforms a single vertex (RTPS). Pipeline order matches
// the hardware: rotate+translate with truncating >>12, saturate depth to
// 0..0xFFFF, perspective-divide, saturate IR to ±0x8000, then screen
// offset and a final clamp to ±1024.
//
// The divide is exact rounded integer division where the GTE uses a
// Newton-Raphson table approximation; the results differ by at most one
// in q, which is below one screen pixel for all in-range depths.
func (t *Transform) Perspective(p Pos) ScreenVtx {
	vx, vy, vz := int64(p.X), int64(p.Y), int64(p.Z)

	mx := int64(t.TRX) + (int64(t.Rot[0])*vx+int64(t.Rot[1])*vy+int64(t.Rot[2])*vz)>>12
	my := int64(t.TRY) + (int64(t.Rot[3])*vx+int64(t.Rot[4])*vy+int64(t.Rot[5])*vz)>>12
	mz := int64(t.TRZ) + (int64(t.Rot[6])*vx+int64(t.Rot[7])*vy+int64(t.Rot[8])*vz)>>12

	sz := mz
	if sz < 0 {
		sz = 0
	} else if sz > szMax {
		sz = szMax
	}

	q := int64(qMax)
	if sz > 0 {
		q = (int64(t.H)*0x20000/sz + 1) / 2
		if q > qMax {
			q = qMax
		}
	}

	ir1 := satIR(mx)
	ir2 := satIR(my)

	sx := satScreen((ir1*q + int64(t.OFX)) >> 16)
	sy := satScreen((ir2*q + int64(t.OFY)) >> 16)

	return ScreenVtx{SX: int16(sx), SY: int16(sy), SZ: uint16(sz)}
}

// PerspectiveBatch transforms positions three at a time (RTPT) with a
// single-vertex tail for counts that are not a multiple of three.
// out must be at least len(pos) long.
func (t *Transform) PerspectiveBatch(pos []Pos, out []ScreenVtx) {
	i := 0
	for ; i+2 < len(pos); i += 3 {
		out[i] = t.Perspective(pos[i])
		out[i+1] = t.Perspective(pos[i+1])
		out[i+2] = t.Perspective(pos[i+2])
	}
	for ; i < len(pos); i++ {
		out[i] = t.Perspective(pos[i])
	}
}

func satIR(v int64) int64 {
	if v < irMin {
		return irMin
	}
	if v > irMax {
		return irMax
	}
	return v
}

func satScreen(v int64) int64 {
	if v < sxMin {
		return sxMin
	}
	if v > sxMax {
		return sxMax
	}
	return v
}
