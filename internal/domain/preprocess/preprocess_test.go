package preprocess_test

import (
	"math"
	"testing"

	"github.com/okian/edgeskate/internal/domain/model"
	"github.com/okian/edgeskate/internal/domain/preprocess"
	. "github.com/smartystreets/goconvey/convey"
)

func gradientFrame(rows, cols int) model.Frame {
	f := model.NewFrame(rows, cols)
	for y := range f {
		for x := range f[y] {
			f[y][x] = float64(y*cols+x) * 3.5
		}
	}
	return f
}

func frameRange(f model.Frame) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range f {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

func TestFrameDimensions(t *testing.T) {
	Convey("Given frames of arbitrary size", t, func() {
		sources := []model.Frame{gradientFrame(1, 1), gradientFrame(3, 7), gradientFrame(40, 25)}
		targets := []model.Resolution{{Height: 4, Width: 4}, {Height: 16, Width: 9}, {Height: 1, Width: 30}}

		Convey("Then output always matches the target resolution", func() {
			for _, src := range sources {
				for _, res := range targets {
					for _, denoise := range []float64{0, 0.25} {
						out := preprocess.Frame(src, res, denoise)
						So(out.Rows(), ShouldEqual, res.Height)
						for _, row := range out {
							So(len(row), ShouldEqual, res.Width)
						}
					}
				}
			}
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a non-constant frame", t, func() {
		src := model.Frame{{-2, 0, 2}, {4, 6, 8}}
		out := preprocess.Normalize(src)

		Convey("Then the samples span exactly [0,1]", func() {
			lo, hi := frameRange(out)
			So(lo, ShouldEqual, 0.0)
			So(hi, ShouldEqual, 1.0)
			So(out[0][1], ShouldAlmostEqual, 0.2, 1e-12)
		})

		Convey("And the input is not modified", func() {
			So(src[0][0], ShouldEqual, -2)
		})
	})

	Convey("Given a flat frame of 5.0 values", t, func() {
		src := model.Frame{{5, 5, 5}, {5, 5, 5}}

		Convey("Then normalization yields all zeros", func() {
			for _, row := range preprocess.Normalize(src) {
				for _, v := range row {
					So(v, ShouldEqual, 0)
				}
			}
		})

		Convey("And a full preprocess at any resolution yields all zeros", func() {
			for _, row := range preprocess.Frame(src, model.Resolution{Height: 6, Width: 5}, 0.3) {
				for _, v := range row {
					So(v, ShouldEqual, 0)
				}
			}
		})
	})

	Convey("Given a near-constant frame", t, func() {
		src := model.Frame{{1, 1 + 5e-6}}

		Convey("Then it is treated as flat", func() {
			So(preprocess.Normalize(src), ShouldResemble, model.Frame{{0, 0}})
		})
	})
}

func TestResize(t *testing.T) {
	Convey("Given a 2x2 source", t, func() {
		src := model.Frame{{1, 2}, {3, 4}}

		Convey("When upsampling to 4x4", func() {
			out := preprocess.Resize(src, model.Resolution{Height: 4, Width: 4})

			Convey("Then each source cell is replicated as a block", func() {
				So(out, ShouldResemble, model.Frame{
					{1, 1, 2, 2},
					{1, 1, 2, 2},
					{3, 3, 4, 4},
					{3, 3, 4, 4},
				})
			})
		})

		Convey("When downsampling to 1x1", func() {
			So(preprocess.Resize(src, model.Resolution{Height: 1, Width: 1}), ShouldResemble, model.Frame{{1}})
		})
	})

	Convey("Given a 3x5 source downsampled to 2x2", t, func() {
		src := gradientFrame(3, 5)
		out := preprocess.Resize(src, model.Resolution{Height: 2, Width: 2})

		Convey("Then source indices are floor(dst*src/dstDim)", func() {
			// rows 0,1 ; cols 0,2
			So(out[0][0], ShouldEqual, src[0][0])
			So(out[0][1], ShouldEqual, src[0][2])
			So(out[1][0], ShouldEqual, src[1][0])
			So(out[1][1], ShouldEqual, src[1][2])
		})
	})

	Convey("Given a source without columns", t, func() {
		out := preprocess.Resize(model.Frame{{}, {}}, model.Resolution{Height: 2, Width: 3})

		Convey("Then the result is an all-zero target grid", func() {
			So(out, ShouldResemble, model.Frame{{0, 0, 0}, {0, 0, 0}})
		})
	})
}

func TestDenoise(t *testing.T) {
	Convey("Given denoise strength 0 and resolution 4x4", t, func() {
		src := gradientFrame(7, 3)
		res := model.Resolution{Height: 4, Width: 4}

		Convey("Then blur is skipped and output equals the resized frame", func() {
			So(preprocess.Frame(src, res, 0), ShouldResemble, preprocess.Resize(preprocess.Normalize(src), res))
			So(preprocess.Frame(src, res, -1), ShouldResemble, preprocess.Resize(preprocess.Normalize(src), res))
		})
	})

	Convey("Given Gaussian kernels", t, func() {
		for _, sigma := range []float64{0.1, 0.5, 1.3} {
			k := preprocess.GaussianKernel(sigma)
			sum := 0.0
			for _, w := range k {
				sum += w
			}

			So(len(k), ShouldEqual, 2*max(1, int(math.Ceil(3*sigma)))+1)
			So(sum, ShouldAlmostEqual, 1.0, 1e-12)
			for i := range k {
				So(k[i], ShouldAlmostEqual, k[len(k)-1-i], 1e-15)
			}
		}
	})

	Convey("Given a blurred impulse", t, func() {
		src := model.NewFrame(5, 5)
		src[2][2] = 1
		out := preprocess.GaussianBlur(src, 0.5)

		Convey("Then mass is preserved away from borders and peaks at the center", func() {
			total := 0.0
			for _, row := range out {
				for _, v := range row {
					total += v
				}
			}
			So(total, ShouldAlmostEqual, 1.0, 1e-9)
			So(out[2][2], ShouldBeGreaterThan, out[2][1])
			So(out[2][1], ShouldAlmostEqual, out[1][2], 1e-12)
			So(src[2][1], ShouldEqual, 0)
		})
	})

	Convey("Given a constant frame", t, func() {
		src := model.Frame{{0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}}

		Convey("Then edge replication keeps it constant", func() {
			for _, row := range preprocess.GaussianBlur(src, 1.0) {
				for _, v := range row {
					So(v, ShouldAlmostEqual, 0.5, 1e-12)
				}
			}
		})
	})
}
