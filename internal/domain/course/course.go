// Package course traces a rideable course out of an edge map.
package course

import (
	"math"
	"sort"

	"github.com/okian/edgeskate/internal/domain/model"
)

// minWindow is the smallest moving-average radius used by Smooth.
const minWindow = 2

// cell is a grid coordinate used during flood fill.
type cell struct{ y, x int }

// Generate extracts the largest 8-connected edge region, orders its pixels
// by angle around their centroid and smooths the resulting path.
func Generate(edgeMap model.EdgeMap, smoothing float64) model.Course {
	component := LargestComponent(edgeMap)
	if len(component) == 0 {
		return model.Course{Points: []model.Point{}}
	}
	return model.Course{Points: Smooth(OrderByAngle(component), smoothing)}
}

// LargestComponent returns the pixels of the biggest 8-connected region of
// cells > 0, in discovery order. Regions are discovered in row-major scan
// order and a later region must be strictly larger to replace an earlier one.
func LargestComponent(edgeMap model.EdgeMap) []model.Point {
	rows, cols := edgeMap.Rows(), edgeMap.Cols()
	visited := make([][]bool, rows)
	for y := range visited {
		visited[y] = make([]bool, cols)
	}

	var best []model.Point
	var stack []cell
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if edgeMap[y][x] <= 0 || visited[y][x] {
				continue
			}

			visited[y][x] = true
			stack = append(stack[:0], cell{y, x})
			var component []model.Point
			for len(stack) > 0 {
				c := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				component = append(component, model.Point{X: float64(c.x), Y: float64(c.y)})

				for ny := max(0, c.y-1); ny <= min(rows-1, c.y+1); ny++ {
					for nx := max(0, c.x-1); nx <= min(cols-1, c.x+1); nx++ {
						if visited[ny][nx] || edgeMap[ny][nx] <= 0 {
							continue
						}
						visited[ny][nx] = true
						stack = append(stack, cell{ny, nx})
					}
				}
			}

			if len(component) > len(best) {
				best = component
			}
		}
	}
	return best
}

// OrderByAngle sorts points by atan2(y-cy, x-cx) around their centroid.
// Points with equal angles keep their input order.
func OrderByAngle(points []model.Point) []model.Point {
	if len(points) == 0 {
		return []model.Point{}
	}

	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	cx /= n
	cy /= n

	type keyed struct {
		p     model.Point
		angle float64
	}
	items := make([]keyed, len(points))
	for i, p := range points {
		items[i] = keyed{p: p, angle: math.Atan2(p.Y-cy, p.X-cx)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].angle < items[j].angle })

	out := make([]model.Point, len(items))
	for i, it := range items {
		out[i] = it.p
	}
	return out
}

// Smooth replaces every interior point by the mean of its neighbors within
// radius max(2, round(3*smoothing)), clamped to the slice. The endpoints
// are kept as-is. Paths shorter than 3 points are returned unchanged.
func Smooth(points []model.Point, smoothing float64) []model.Point {
	out := make([]model.Point, len(points))
	copy(out, points)
	if len(points) < 3 {
		return out
	}

	window := smoothingRadius(smoothing, len(points))
	for i := 1; i < len(points)-1; i++ {
		start := max(0, i-window)
		end := min(len(points), i+window+1)
		var sx, sy float64
		for _, p := range points[start:end] {
			sx += p.X
			sy += p.Y
		}
		count := float64(end - start)
		out[i] = model.Point{X: sx / count, Y: sy / count}
	}
	return out
}

// smoothingRadius is max(minWindow, round(3*smoothing)), capped at n so the
// int conversion cannot overflow. NaN covers the whole path.
func smoothingRadius(smoothing float64, n int) int {
	r := math.RoundToEven(3 * smoothing)
	switch {
	case math.IsNaN(r) || r > float64(n):
		return max(minWindow, n)
	case r < minWindow:
		return minWindow
	}
	return int(r)
}
