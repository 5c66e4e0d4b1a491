package gte

import "testing"

func TestSinCos(t *testing.T) {
	tests := []struct {
		angle    int32
		sin, cos int32
	}{
		{0, 0, One},
		{0x4000, One, 0},
		{0x8000, 0, -One},
		{0xC000, -One, 0},
		{-0x4000, -One, 0},
		{FullTurn, 0, One}, // wraps
	}

	for _, tt := range tests {
		if got := Sin(tt.angle); got != tt.sin {
			t.Errorf("Sin(%#x) = %d, want %d", tt.angle, got, tt.sin)
		}
		if got := Cos(tt.angle); got != tt.cos {
			t.Errorf("Cos(%#x) = %d, want %d", tt.angle, got, tt.cos)
		}
	}
}

func TestIdentityMulVec(t *testing.T) {
	x, y, z := Identity().MulVec(17, -300, 32767)
	if x != 17 || y != -300 || z != 32767 {
		t.Errorf("identity MulVec = (%d,%d,%d), want (17,-300,32767)", x, y, z)
	}
}

func TestMulIdentity(t *testing.T) {
	m := RotationZYX(0x0123, 0x2345, 0x3456)
	if got := Mul(Identity(), m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
	if got := Mul(m, Identity()); got != m {
		t.Errorf("m*I = %v, want %v", got, m)
	}
}

// The >>12 rescale truncates toward negative infinity, it never rounds.
func TestMulVecTruncates(t *testing.T) {
	half := Mat3{One / 2, 0, 0, 0, One / 2, 0, 0, 0, One / 2}

	x, _, _ := half.MulVec(3, 0, 0)
	if x != 1 {
		t.Errorf("0.5*3 = %d, want 1 (truncated)", x)
	}
	x, _, _ = half.MulVec(-3, 0, 0)
	if x != -2 {
		t.Errorf("0.5*-3 = %d, want -2 (arithmetic shift)", x)
	}
}

func TestRotationQuarterTurns(t *testing.T) {
	tests := []struct {
		name    string
		axis    Axis
		x, y, z int32
		wx, wy  int32
		wz      int32
	}{
		{"Z maps +X to +Y", AxisZ, 100, 0, 0, 0, 100, 0},
		{"Z maps +Y to -X", AxisZ, 0, 100, 0, -100, 0, 0},
		{"X maps +Y to +Z", AxisX, 0, 100, 0, 0, 0, 100},
		{"Y maps +Z to +X", AxisY, 0, 0, 100, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Rotation(FullTurn/4, tt.axis)
			x, y, z := m.MulVec(tt.x, tt.y, tt.z)
			if x != tt.wx || y != tt.wy || z != tt.wz {
				t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", x, y, z, tt.wx, tt.wy, tt.wz)
			}
		})
	}
}

func TestRotationZYXSingleAxis(t *testing.T) {
	// With the other two angles at zero the composed matrix must be the
	// elementary rotation of the remaining axis.
	if got, want := RotationZYX(0x1200, 0, 0), Rotation(0x1200, AxisX); got != want {
		t.Errorf("RotationZYX(rx,0,0) = %v, want %v", got, want)
	}
	if got, want := RotationZYX(0, 0x1200, 0), Rotation(0x1200, AxisY); got != want {
		t.Errorf("RotationZYX(0,ry,0) = %v, want %v", got, want)
	}
	if got, want := RotationZYX(0, 0, 0x1200), Rotation(0x1200, AxisZ); got != want {
		t.Errorf("RotationZYX(0,0,rz) = %v, want %v", got, want)
	}
}

func TestRotationZYXOrder(t *testing.T) {
	// Keyframe Euler triples apply Z, then Y, then X.
	rx, ry, rz := int32(0x0800), int32(0x1000), int32(0x1800)
	want := Mul(Mul(Rotation(rz, AxisZ), Rotation(ry, AxisY)), Rotation(rx, AxisX))
	if got := RotationZYX(rx, ry, rz); got != want {
		t.Errorf("RotationZYX = %v, want Rz*Ry*Rx = %v", got, want)
	}
}
