package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultCellSize = 4.0

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Bounded is implemented by shapes with a finite extent. Only those go into
// the grid; everything else is tested against every ray.
type Bounded interface {
	Bounds() AABB
}

// SpatialHashGrid buckets objects by the cells their bounds overlap.
type SpatialHashGrid struct {
	cellSize float64
	cells    map[uint64][]*Object
	// bounds covers every inserted AABB; valid only while cells is non-empty.
	bounds AABB
}

func NewSpatialHashGrid(cellSize float64) *SpatialHashGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]*Object),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
	grid.bounds = AABB{}
}

func (grid *SpatialHashGrid) Insert(obj *Object, aabb AABB) {
	if len(grid.cells) == 0 {
		grid.bounds = aabb
	} else {
		for axis := 0; axis < 3; axis++ {
			grid.bounds.Min[axis] = math.Min(grid.bounds.Min[axis], aabb.Min[axis])
			grid.bounds.Max[axis] = math.Max(grid.bounds.Max[axis], aabb.Max[axis])
		}
	}

	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				key := grid.hashKey(x, y, z)
				grid.cells[key] = append(grid.cells[key], obj)
			}
		}
	}
}

func (grid *SpatialHashGrid) QueryAABB(aabb AABB) []*Object {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	unique := make(map[*Object]struct{})
	var results []*Object
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				results = grid.collect(x, y, z, unique, results)
			}
		}
	}
	return results
}

// QueryRay walks the cells crossed by the segment origin + dir*t, t in
// [0, tMax], and returns the objects found there. dir must be unit length.
// Only the part of the segment inside the occupied bounds is walked.
func (grid *SpatialHashGrid) QueryRay(origin, dir mgl64.Vec3, tMax float64) []*Object {
	if len(grid.cells) == 0 {
		return nil
	}
	tEnter, tExit, ok := clipSegment(grid.bounds, origin, dir, tMax)
	if !ok {
		return nil
	}
	origin = origin.Add(dir.Mul(tEnter))
	tMax = tExit - tEnter

	unique := make(map[*Object]struct{})
	var results []*Object

	var cell, step [3]int
	var tNext, tDelta [3]float64
	for axis := 0; axis < 3; axis++ {
		cell[axis] = grid.getCellIndex(origin[axis])
		switch {
		case dir[axis] > 0:
			step[axis] = 1
			tDelta[axis] = grid.cellSize / dir[axis]
			tNext[axis] = (float64(cell[axis]+1)*grid.cellSize - origin[axis]) / dir[axis]
		case dir[axis] < 0:
			step[axis] = -1
			tDelta[axis] = -grid.cellSize / dir[axis]
			tNext[axis] = (float64(cell[axis])*grid.cellSize - origin[axis]) / dir[axis]
		default:
			tDelta[axis] = math.Inf(1)
			tNext[axis] = math.Inf(1)
		}
	}

	// A segment of length tMax crosses at most this many cells per axis.
	limit := 3*int(math.Ceil(tMax/grid.cellSize)) + 3
	for i := 0; i < limit; i++ {
		results = grid.collect(cell[0], cell[1], cell[2], unique, results)

		axis := 0
		if tNext[1] < tNext[axis] {
			axis = 1
		}
		if tNext[2] < tNext[axis] {
			axis = 2
		}
		if tNext[axis] > tMax {
			break
		}
		cell[axis] += step[axis]
		tNext[axis] += tDelta[axis]
	}
	return results
}

// clipSegment intersects origin + dir*t, t in [0, tMax], with box.
func clipSegment(box AABB, origin, dir mgl64.Vec3, tMax float64) (float64, float64, bool) {
	t0, t1 := 0.0, tMax
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < box.Min[axis] || origin[axis] > box.Max[axis] {
				return 0, 0, false
			}
			continue
		}
		near := (box.Min[axis] - origin[axis]) / dir[axis]
		far := (box.Max[axis] - origin[axis]) / dir[axis]
		if near > far {
			near, far = far, near
		}
		t0 = math.Max(t0, near)
		t1 = math.Min(t1, far)
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

func (grid *SpatialHashGrid) collect(x, y, z int, unique map[*Object]struct{}, results []*Object) []*Object {
	for _, obj := range grid.cells[grid.hashKey(x, y, z)] {
		if _, ok := unique[obj]; !ok {
			unique[obj] = struct{}{}
			results = append(results, obj)
		}
	}
	return results
}

func (grid *SpatialHashGrid) getCellIndex(pos float64) int {
	return int(math.Floor(pos / grid.cellSize))
}

// Colliding keys only add candidates; the narrow phase filters them.
func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}
