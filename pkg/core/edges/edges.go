// Package edges extracts the lead network: the deduplicated set of
// undirected boundary segments of a polygon set.
//
// Identity is decided on quantized endpoints (see geom.Quantum). Each
// segment is canonicalized by ordering its endpoints lexicographically on
// their keys, so (a,b) and (b,a) collapse to one Edge regardless of which
// owning polygon is walked first. Two distinct vertices closer than the
// quantum are deliberately treated as one.
package edges

import (
	"github.com/matzehuels/stainedglass/pkg/core/geom"
)

// Key identifies an undirected segment; A is never greater than B.
type Key struct {
	A, B geom.Key
}

// KeyOf returns the canonical key of segment (a, b) and whether the
// endpoints had to be swapped to reach canonical order.
func KeyOf(a, b geom.Point) (Key, bool) {
	ka, kb := geom.Quantize(a), geom.Quantize(b)
	if kb.Less(ka) {
		return Key{A: kb, B: ka}, true
	}
	return Key{A: ka, B: kb}, false
}

// Edge is one segment of the lead network.
type Edge struct {
	A, B   geom.Point // canonical order
	Owners []int      // indices of the one or two polygons bounded by this segment
}

// Key returns the canonical key of e.
func (e Edge) Key() Key {
	k, _ := KeyOf(e.A, e.B)
	return k
}

// Length returns the Euclidean length of e.
func (e Edge) Length() float64 {
	return e.A.Dist(e.B)
}

// Boundary reports whether e bounds a single polygon.
func (e Edge) Boundary() bool {
	return len(e.Owners) == 1
}

// FromCells walks polys in order, side by side, and returns each distinct
// segment once in order of first appearance. Sides whose endpoints share a
// quantized key are skipped.
func FromCells(polys []geom.Polygon) []Edge {
	c := newCollector()
	for i, p := range polys {
		for k := range p {
			c.add(p[k], p[(k+1)%len(p)], i)
		}
	}
	return c.edges
}

// FromTriangles returns the distinct sides of tris over pts, the
// triangulated lead network variant. Owners are triangle indices.
func FromTriangles(pts []geom.Point, tris [][3]int) []Edge {
	c := newCollector()
	for i, t := range tris {
		for k := 0; k < 3; k++ {
			c.add(pts[t[k]], pts[t[(k+1)%3]], i)
		}
	}
	return c.edges
}

type collector struct {
	index map[Key]int
	edges []Edge
}

func newCollector() *collector {
	return &collector{index: make(map[Key]int)}
}

func (c *collector) add(a, b geom.Point, owner int) {
	k, swapped := KeyOf(a, b)
	if k.A == k.B {
		return
	}
	if i, ok := c.index[k]; ok {
		e := &c.edges[i]
		if e.Owners[len(e.Owners)-1] != owner {
			e.Owners = append(e.Owners, owner)
		}
		return
	}
	if swapped {
		a, b = b, a
	}
	c.index[k] = len(c.edges)
	c.edges = append(c.edges, Edge{A: a, B: b, Owners: []int{owner}})
}

// JunctionDegree returns, per quantized vertex, the number of distinct
// polygons meeting there.
func JunctionDegree(es []Edge) map[geom.Key]int {
	owners := make(map[geom.Key]map[int]struct{})
	mark := func(k geom.Key, o int) {
		set, ok := owners[k]
		if !ok {
			set = make(map[int]struct{})
			owners[k] = set
		}
		set[o] = struct{}{}
	}
	for _, e := range es {
		k := e.Key()
		for _, o := range e.Owners {
			mark(k.A, o)
			mark(k.B, o)
		}
	}
	deg := make(map[geom.Key]int, len(owners))
	for k, set := range owners {
		deg[k] = len(set)
	}
	return deg
}

// Vertices returns the number of distinct quantized endpoints in es.
func Vertices(es []Edge) int {
	seen := make(map[geom.Key]struct{}, len(es))
	for _, e := range es {
		k := e.Key()
		seen[k.A] = struct{}{}
		seen[k.B] = struct{}{}
	}
	return len(seen)
}

// Adjacency returns, per polygon index, the polygons it shares a segment with.
// Neighbor lists are in order of first shared segment.
func Adjacency(es []Edge) map[int][]int {
	adj := make(map[int][]int)
	link := func(a, b int) {
		for _, n := range adj[a] {
			if n == b {
				return
			}
		}
		adj[a] = append(adj[a], b)
	}
	for _, e := range es {
		for i, a := range e.Owners {
			for _, b := range e.Owners[i+1:] {
				link(a, b)
				link(b, a)
			}
		}
	}
	return adj
}
