package render_test

import (
	"math"
	"strings"
	"testing"

	"github.com/okian/edgeskate/internal/adapters/render"
	"github.com/okian/edgeskate/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOverlay(t *testing.T) {
	Convey("Given a 2x3 frame", t, func() {
		frame := model.Frame{{0, 0.5, 1}, {-1, 0.99, 2}}

		Convey("When rendering without a path", func() {
			out := render.Overlay(frame, nil)

			Convey("Then intensities map onto the ramp", func() {
				So(out, ShouldEqual, " =@\n %@")
			})
		})

		Convey("When rendering a path", func() {
			out := render.Overlay(frame, []model.Point{{X: 0.4, Y: 0}, {X: 2.5, Y: 0.5}, {X: 10, Y: -3}})

			Convey("Then rounded and clamped points are marked", func() {
				// (0,0), (2,0) half-to-even, (2,0) clamped
				So(out, ShouldEqual, "S=S\n %@")
			})
		})

		Convey("When the path holds non-finite-looking far points", func() {
			out := render.Overlay(frame, []model.Point{{X: -100, Y: 100}})
			So(strings.Split(out, "\n")[1][0], ShouldEqual, byte(render.Rider))
		})
	})

	Convey("Given an empty frame", t, func() {
		Convey("Then rendering yields an empty string without panicking", func() {
			So(render.Overlay(nil, []model.Point{{X: 1, Y: 1}}), ShouldEqual, "")
			So(render.Overlay(model.Frame{{}}, []model.Point{{X: math.Pi, Y: 0}}), ShouldEqual, "")
		})
	})
}
