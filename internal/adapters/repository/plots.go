package repository

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/okian/edgeskate/internal/domain/model"
)

var (
	courseColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pathColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func toXYs(points []model.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// saveCoursePlot draws the course polyline with the simulated path on top.
// Rows grow downwards, so the Y axis is inverted to match the frame.
func saveCoursePlot(file string, course, path []model.Point) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Course (%d points)", len(course))
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	courseLine, err := plotter.NewLine(toXYs(course))
	if err != nil {
		return fmt.Errorf("course line: %w", err)
	}
	courseLine.Color = courseColor
	courseLine.Width = vg.Points(1)
	p.Add(courseLine)
	p.Legend.Add("course", courseLine)

	if len(path) > 0 {
		pathPts, err := plotter.NewScatter(toXYs(path))
		if err != nil {
			return fmt.Errorf("path scatter: %w", err)
		}
		pathPts.Color = pathColor
		pathPts.Radius = vg.Points(1)
		p.Add(pathPts)
		p.Legend.Add("path", pathPts)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p.Save(6*vg.Inch, 6*vg.Inch, file)
}

// saveVelocityPlot draws the velocity of each course segment.
func saveVelocityPlot(file string, velocities []float64) error {
	p := plot.New()
	p.Title.Text = "Velocity per segment"
	p.X.Label.Text = "Segment"
	p.Y.Label.Text = "Velocity"

	pts := make(plotter.XYs, len(velocities))
	for i, v := range velocities {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("velocity line: %w", err)
	}
	line.Color = courseColor
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(10*vg.Inch, 4*vg.Inch, file)
}
