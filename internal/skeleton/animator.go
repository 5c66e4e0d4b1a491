// Package skeleton turns keyframed animation data into per-limb world
// transforms for the render pipeline.
package skeleton

import (
	"psx-room-renderer/internal/gte"
	"psx-room-renderer/internal/skm"
)

// Bone is one limb's world-space pose for the current frame: rotation
// matrix plus translation in model space. Rebuilt every visible frame,
// never persisted.
type Bone struct {
	Rot        gte.Mat3
	TX, TY, TZ int32
}

// State is the animator's play state.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

// step is one entry of the precomputed traversal order: which limb to
// pose and which limb's already-computed pose is its parent.
type step struct {
	limb, parent uint8
}

// Animator owns animation playback state for one skeletal mesh and the
// scratch bone array filled by ComputePose.
//
// The child/sibling tree is flattened to an explicit traversal order
// once at construction: a child is visited under the pose just computed
// for its limb, a sibling under the pose captured for their shared
// parent. The per-frame path is then a plain loop, no recursion.
type Animator struct {
	mesh  *skm.Mesh
	order []step

	state State
	anim  int
	frame int

	bones [skm.MaxLimbs]Bone
}

func NewAnimator(m *skm.Mesh) *Animator {
	a := &Animator{mesh: m, state: Idle}
	for i := range a.bones {
		a.bones[i].Rot = gte.Identity()
	}

	// Pre-order flatten. Pushing the sibling before the child makes the
	// child pop first, which reproduces the recursive visit order.
	if m.NumLimbs() > 0 {
		root := m.Limb(0)
		if root.Child != skm.NoLink {
			type frame struct{ limb, parent uint8 }
			stack := []frame{{root.Child, 0}}
			for len(stack) > 0 {
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if int(f.limb) >= m.NumLimbs() {
					continue
				}
				a.order = append(a.order, step{f.limb, f.parent})
				l := m.Limb(int(f.limb))
				if l.Sibling != skm.NoLink {
					stack = append(stack, frame{l.Sibling, f.parent})
				}
				if l.Child != skm.NoLink {
					stack = append(stack, frame{l.Child, f.limb})
				}
			}
		}
	}

	if m.NumAnims() > 0 {
		a.state = Playing
	}
	return a
}

func (a *Animator) State() State { return a.state }
func (a *Animator) Anim() int    { return a.anim }
func (a *Animator) Frame() int   { return a.frame }

// SetAnimation switches to animation i and restarts it from frame zero.
// Out-of-range indices are ignored.
func (a *Animator) SetAnimation(i int) {
	if i < 0 || i >= a.mesh.NumAnims() {
		return
	}
	a.anim = i
	a.frame = 0
	if a.state == Idle {
		a.state = Playing
	}
}

// NextAnimation cycles to the following animation, wrapping around.
func (a *Animator) NextAnimation() {
	if n := a.mesh.NumAnims(); n > 0 {
		a.SetAnimation((a.anim + 1) % n)
	}
}

// TogglePause flips Playing and Paused. Idle animators stay idle.
func (a *Animator) TogglePause() {
	switch a.state {
	case Playing:
		a.state = Paused
	case Paused:
		a.state = Playing
	}
}

// Advance steps the frame counter by one when playing. Past the final
// frame a looping animation wraps to zero; a non-looping one holds at
// its last frame. Never an error.
func (a *Animator) Advance() {
	if a.state != Playing {
		return
	}
	ad := a.mesh.Anim(a.anim)
	a.frame++
	if a.frame >= ad.FrameCount {
		if ad.Loop() {
			a.frame = 0
		} else {
			a.frame = ad.FrameCount - 1
		}
	}
}

// ComputePose rebuilds the world-space bone array from the current
// keyframe and returns it. Limbs without geometry still pose here;
// their children depend on the transform.
func (a *Animator) ComputePose() []Bone {
	n := a.mesh.NumLimbs()
	if n == 0 || a.mesh.NumAnims() == 0 {
		return a.bones[:n]
	}

	f := a.mesh.Frame(a.anim, a.frame)

	rootX, rootY, rootZ := f.RootPos()
	rx, ry, rz := f.LimbRot(0)
	a.bones[0].Rot = gte.RotationZYX(int32(rx), int32(ry), int32(rz))
	a.bones[0].TX = int32(rootX)
	a.bones[0].TY = int32(rootY)
	a.bones[0].TZ = int32(rootZ)

	for _, st := range a.order {
		limb := a.mesh.Limb(int(st.limb))
		parent := &a.bones[st.parent]

		rx, ry, rz := f.LimbRot(int(st.limb))
		local := gte.RotationZYX(int32(rx), int32(ry), int32(rz))

		b := &a.bones[st.limb]
		b.Rot = gte.Mul(parent.Rot, local)

		jx, jy, jz := parent.Rot.MulVec(int32(limb.JointX), int32(limb.JointY), int32(limb.JointZ))
		b.TX = parent.TX + jx
		b.TY = parent.TY + jy
		b.TZ = parent.TZ + jz
	}

	return a.bones[:n]
}
