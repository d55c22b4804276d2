package region

import (
	"testing"

	"github.com/umair4234/Thumbgenai/internal/geom"
)

func line(x0, y0, x1, y1 float64) geom.Path {
	return geom.Path{geom.Pt(x0, y0), geom.Pt(x1, y1)}
}

func TestMergeFirstStrokeCreatesRegionOne(t *testing.T) {
	s := Merge(nil, line(10, 10, 50, 10), 10, 0)
	if s.Len() != 1 {
		t.Fatalf("want 1 region, got %d", s.Len())
	}
	r := s[0]
	if r.ID != 1 {
		t.Fatalf("want id 1, got %d", r.ID)
	}
	want := geom.BoundingBox{MinX: 10, MinY: 10, MaxX: 50, MaxY: 10}
	if r.BBox != want {
		t.Fatalf("bbox %+v, want %+v", r.BBox, want)
	}
}

func TestMergeCloseStrokesJoin(t *testing.T) {
	a := line(0, 0, 40, 0)
	b := line(60, 0, 100, 0) // 20px gap, threshold 25
	for _, order := range [][]geom.Path{{a, b}, {b, a}} {
		var s Set
		for _, p := range order {
			s = Merge(s, p, 10, 0)
		}
		if s.Len() != 1 {
			t.Fatalf("close strokes produced %d regions", s.Len())
		}
		if len(s[0].Paths) != 2 {
			t.Fatalf("want 2 paths in region, got %d", len(s[0].Paths))
		}
		want := geom.BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 0}
		if s[0].BBox != want {
			t.Fatalf("bbox %+v, want %+v", s[0].BBox, want)
		}
	}
}

func TestMergeFarStrokesSeparate(t *testing.T) {
	s := Merge(nil, line(0, 0, 40, 0), 10, 0)
	s = Merge(s, line(200, 200, 240, 200), 10, 0)
	if got := s.IDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", got)
	}
}

func TestMergeThresholdScalesWithBrush(t *testing.T) {
	a := line(0, 0, 40, 0)
	b := line(80, 0, 120, 0) // 40px gap
	if s := Merge(Merge(nil, a, 10, 0), b, 10, 0); s.Len() != 2 {
		t.Fatalf("brush 10: want 2 regions, got %d", s.Len())
	}
	if s := Merge(Merge(nil, a, 20, 0), b, 20, 0); s.Len() != 1 {
		t.Fatalf("brush 20: want 1 region, got %d", s.Len())
	}
}

func TestMergeFirstMatchOnly(t *testing.T) {
	s := Merge(nil, line(0, 0, 10, 0), 10, 0)
	s = Merge(s, line(100, 0, 110, 0), 10, 0)
	// Close to both regions; only the first absorbs it.
	s = Merge(s, line(30, 0, 80, 0), 10, 0)
	if s.Len() != 2 {
		t.Fatalf("want 2 regions, got %d", s.Len())
	}
	if len(s[0].Paths) != 2 || len(s[1].Paths) != 1 {
		t.Fatalf("paths per region = %d,%d, want 2,1", len(s[0].Paths), len(s[1].Paths))
	}
}

func TestMergeIgnoresShortPaths(t *testing.T) {
	s := Merge(nil, line(0, 0, 10, 10), 10, 0)
	if got := Merge(s, geom.Path{geom.Pt(500, 500)}, 10, 0); !got.Equal(s) {
		t.Fatal("single point path changed the set")
	}
	if got := Merge(s, nil, 10, 0); !got.Equal(s) {
		t.Fatal("empty path changed the set")
	}
	if got := Merge(s, line(500, 500, 500, 500), 10, 0); !got.Equal(s) {
		t.Fatal("path of repeated points changed the set")
	}
}

func TestMergeFloorPreventsReuse(t *testing.T) {
	s := Merge(nil, line(0, 0, 10, 0), 10, 5)
	if s[0].ID != 6 {
		t.Fatalf("want id 6 above floor 5, got %d", s[0].ID)
	}
	s = Merge(s, line(300, 0, 310, 0), 10, 2)
	if s[1].ID != 7 {
		t.Fatalf("max id wins over lower floor, got %d", s[1].ID)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	s := Merge(nil, line(0, 0, 10, 0), 10, 0)
	before := s.Clone()
	p := line(20, 0, 30, 0)
	_ = Merge(s, p, 10, 0)
	_ = Merge(s, line(500, 500, 510, 500), 10, 0)
	if !s.Equal(before) {
		t.Fatal("Merge modified its input set")
	}
	p[0] = geom.Pt(-1, -1)
	got := Merge(nil, line(1, 1, 2, 2), 10, 0)
	got2 := Merge(got, p, 10, 0)
	p[1] = geom.Pt(-50, -50)
	if got2[0].Paths[1][1].X == -50 {
		t.Fatal("Merge kept a reference to the caller's path")
	}
}

func TestBBoxEnclosesAllPaths(t *testing.T) {
	var s Set
	for _, p := range []geom.Path{
		{geom.Pt(5, 5), geom.Pt(20, 7), geom.Pt(14, 30)},
		{geom.Pt(40, 2), geom.Pt(42, 9)},
		{geom.Pt(300, 300), geom.Pt(310, 320)},
		{geom.Pt(25, 35), geom.Pt(3, 44)},
	} {
		s = Merge(s, p, 8, 0)
	}
	for _, r := range s {
		want, _ := geom.BoundingBoxOfPaths(r.Paths)
		if r.BBox != want {
			t.Errorf("region %d bbox %+v, recomputed %+v", r.ID, r.BBox, want)
		}
	}
}

func TestFindAndMaxID(t *testing.T) {
	s := Set{{ID: 3}, {ID: 9}, {ID: 4}}
	if s.MaxID() != 9 {
		t.Fatalf("MaxID = %d", s.MaxID())
	}
	if _, ok := s.Find(4); !ok {
		t.Fatal("Find(4) failed")
	}
	if _, ok := s.Find(5); ok {
		t.Fatal("Find(5) should fail")
	}
	if ids := s.IDs(); ids[0] != 3 || ids[1] != 9 || ids[2] != 4 {
		t.Fatalf("IDs not in stored order: %v", ids)
	}
	if Set(nil).MaxID() != 0 {
		t.Fatal("empty set MaxID should be 0")
	}
}
