package core

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	if got := (Vec3{X: 3, Y: 4}).Norm(); got != 5 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := (Vec3{}).Norm(); got != 0 {
		t.Fatalf("zero vector Norm = %v, want 0", got)
	}
}

func TestVec3DistanceTo(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}
	if got := a.DistanceTo(b); got != 5 {
		t.Fatalf("DistanceTo = %v, want 5", got)
	}
	if got := a.DistanceTo(a); got != 0 {
		t.Fatalf("distance to self = %v, want 0", got)
	}
}

func TestVec3Dot(t *testing.T) {
	a := Vec3{X: 1, Y: 0, Z: 0}
	b := Vec3{X: 0, Y: 1, Z: 0}
	if got := a.Dot(b); got != 0 {
		t.Fatalf("orthogonal Dot = %v, want 0", got)
	}
	if got := a.Dot(a); got != 1 {
		t.Fatalf("unit Dot = %v, want 1", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Fatal("finite vector reported non-finite")
	}
	for _, v := range []Vec3{
		{X: math.NaN()},
		{Y: math.NaN()},
		{Z: math.NaN()},
		{X: math.Inf(1)},
		{Z: math.Inf(-1)},
	} {
		if v.IsFinite() {
			t.Fatalf("vector %+v should be non-finite", v)
		}
	}
}
