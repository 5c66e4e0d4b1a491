package render

import "psx-room-renderer/internal/gte"

// Camera is an orbit camera: yaw/pitch binary angles and a radius
// around a target point in world space.
type Camera struct {
	Yaw   int32 // binary angle around Y
	Pitch int32 // binary angle around X
	Dist  int32

	TargetX, TargetY, TargetZ int32
}

// View computes the per-frame view rotation and translation.
//
// The camera sits at target − forward·dist, where forward is row 2 of
// Ry·Rx. World space is Y-up but screen Y grows downward, so the Y row
// of the rotation is negated before the translation −R·camPos is taken.
func (c Camera) View() (rot gte.Mat3, tx, ty, tz int32) {
	rotY := gte.Rotation(c.Yaw, gte.AxisY)
	rotX := gte.Rotation(c.Pitch, gte.AxisX)
	viewRot := gte.Mul(rotY, rotX)

	camX := c.TargetX - int32(int64(viewRot[6])*int64(c.Dist)>>12)
	camY := c.TargetY - int32(int64(viewRot[7])*int64(c.Dist)>>12)
	camZ := c.TargetZ - int32(int64(viewRot[8])*int64(c.Dist)>>12)

	rot = viewRot
	rot[3] = -rot[3]
	rot[4] = -rot[4]
	rot[5] = -rot[5]

	tx, ty, tz = rot.MulVec(camX, camY, camZ)
	return rot, -tx, -ty, -tz
}
