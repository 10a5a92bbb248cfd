package geom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestDistance(t *testing.T) {
	if got := Distance(Pt(0, 0), Pt(3, 4)); math.Abs(got-5) > epsilon {
		t.Errorf("Distance() = %f, want 5", got)
	}
	if got := Distance(Pt(2, 2), Pt(2, 2)); got != 0 {
		t.Errorf("Distance() of identical points = %f, want 0", got)
	}
}

func TestDistanceToSegment(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		a    Point
		b    Point
		want float64
	}{
		{
			name: "degenerate segment is point distance",
			p:    Pt(4, 5),
			a:    Pt(1, 1),
			b:    Pt(1, 1),
			want: 5,
		},
		{
			name: "colinear point between endpoints",
			p:    Pt(5, 5),
			a:    Pt(0, 0),
			b:    Pt(10, 10),
			want: 0,
		},
		{
			name: "perpendicular to the middle",
			p:    Pt(5, 3),
			a:    Pt(0, 0),
			b:    Pt(10, 0),
			want: 3,
		},
		{
			name: "beyond the end clamps to endpoint",
			p:    Pt(13, 4),
			a:    Pt(0, 0),
			b:    Pt(10, 0),
			want: 5,
		},
		{
			name: "before the start clamps to start",
			p:    Pt(-3, -4),
			a:    Pt(0, 0),
			b:    Pt(10, 0),
			want: 5,
		},
		{
			name: "colinear but outside the segment",
			p:    Pt(20, 0),
			a:    Pt(0, 0),
			b:    Pt(10, 0),
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceToSegment(tt.p, tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("DistanceToSegment() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDistanceToSegment_Symmetric(t *testing.T) {
	p := Pt(3, 7)
	a := Pt(-2, 1)
	b := Pt(8, -4)

	if d1, d2 := DistanceToSegment(p, a, b), DistanceToSegment(p, b, a); math.Abs(d1-d2) > epsilon {
		t.Errorf("segment direction changed the distance: %f vs %f", d1, d2)
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		from, to, t, want float64
	}{
		{360, 0, 0.3, 252},
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{-4, 4, 0.5, 0},
	}

	for _, tt := range tests {
		if got := Lerp(tt.from, tt.to, tt.t); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Lerp(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-1, 0, 1); got != 0 {
		t.Errorf("Clamp below = %v, want 0", got)
	}
	if got := Clamp(2, 0, 1); got != 1 {
		t.Errorf("Clamp above = %v, want 1", got)
	}
	if got := ClampInt(25, 0, 19); got != 19 {
		t.Errorf("ClampInt above = %d, want 19", got)
	}
	if got := ClampInt(-3, 0, 19); got != 0 {
		t.Errorf("ClampInt below = %d, want 0", got)
	}
	if got := ClampInt(7, 0, 19); got != 7 {
		t.Errorf("ClampInt inside = %d, want 7", got)
	}
}
