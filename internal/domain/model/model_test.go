package model_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/satlens/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestProperty(t *testing.T) {
	Convey("Given a constant property", t, func() {
		p := model.Constant(4.5)

		Convey("It is defined at every instant", func() {
			v, ok := p.At(time.Time{})
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 4.5)
			v, ok = p.At(epoch.Add(1000 * time.Hour))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 4.5)
		})
	})

	Convey("Given a sampled property", t, func() {
		p, err := model.Sampled(epoch, []float64{0, 60, 120}, []float64{1, 3, 2})
		So(err, ShouldBeNil)

		Convey("It returns exact samples", func() {
			v, ok := p.At(epoch.Add(time.Minute))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 3)
		})

		Convey("It interpolates linearly between samples", func() {
			v, ok := p.At(epoch.Add(30 * time.Second))
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, 2, 1e-9)
			v, ok = p.At(epoch.Add(90 * time.Second))
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, 2.5, 1e-9)
		})

		Convey("It is undefined outside the sampled range", func() {
			_, ok := p.At(epoch.Add(-time.Second))
			So(ok, ShouldBeFalse)
			_, ok = p.At(epoch.Add(121 * time.Second))
			So(ok, ShouldBeFalse)
		})

		Convey("A single sample is defined only at its instant", func() {
			one, err := model.Sampled(epoch, []float64{10}, []float64{7})
			So(err, ShouldBeNil)
			v, ok := one.At(epoch.Add(10 * time.Second))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 7)
			_, ok = one.At(epoch.Add(11 * time.Second))
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given invalid samples", t, func() {
		_, err := model.Sampled(epoch, nil, nil)
		So(err, ShouldWrap, model.ErrEmptySamples)

		_, err = model.Sampled(epoch, []float64{0, 1}, []float64{1})
		So(err, ShouldWrap, model.ErrSampleMismatch)

		_, err = model.Sampled(epoch, []float64{5, 5}, []float64{1, 2})
		So(err, ShouldWrap, model.ErrUnorderedSamples)
	})

	Convey("Given an interval property", t, func() {
		p, err := model.Intervals([]model.Interval{
			{Start: epoch, End: epoch.Add(time.Hour), Value: 1},
			{Start: epoch.Add(time.Hour), End: epoch.Add(2 * time.Hour), Value: 2},
		})
		So(err, ShouldBeNil)

		Convey("The first containing interval wins at a shared boundary", func() {
			v, ok := p.At(epoch.Add(time.Hour))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1)
		})

		Convey("Later instants resolve to the second interval", func() {
			v, ok := p.At(epoch.Add(90 * time.Minute))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 2)
		})

		Convey("Instants outside every interval are undefined", func() {
			_, ok := p.At(epoch.Add(3 * time.Hour))
			So(ok, ShouldBeFalse)
		})

		Convey("Reversed intervals are rejected", func() {
			_, err := model.Intervals([]model.Interval{{Start: epoch.Add(time.Hour), End: epoch}})
			So(err, ShouldWrap, model.ErrInvalidInterval)
		})
	})

	Convey("Given the zero property", t, func() {
		var p model.Property
		So(p.Defined(), ShouldBeFalse)
		_, ok := p.At(epoch)
		So(ok, ShouldBeFalse)
	})
}

func TestEntityAt(t *testing.T) {
	Convey("Given an entity with mixed properties", t, func() {
		sampled, err := model.Sampled(epoch, []float64{0, 10}, []float64{0, 10})
		So(err, ShouldBeNil)
		e := model.Entity{
			ID:   "25544",
			Name: "ISS",
			Properties: map[string]model.Property{
				"DIT": model.Constant(0.4),
				"S_D": sampled,
			},
		}

		Convey("When evaluated inside the sample range", func() {
			obj := e.At(epoch.Add(5 * time.Second))

			Convey("Then every metric is present", func() {
				So(obj.ID, ShouldEqual, "25544")
				So(obj.Name, ShouldEqual, "ISS")
				v, ok := obj.Metric("S_D")
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 5, 1e-9)
			})
		})

		Convey("When evaluated past the sample range", func() {
			obj := e.At(epoch.Add(time.Minute))

			Convey("Then the undefined metric is omitted", func() {
				_, ok := obj.Metric("S_D")
				So(ok, ShouldBeFalse)
				v, ok := obj.Metric("DIT")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.4)
			})
		})

		Convey("PropertyNames is sorted", func() {
			So(e.PropertyNames(), ShouldResemble, []string{"DIT", "S_D"})
		})
	})
}

func TestBinContains(t *testing.T) {
	Convey("Given a bin", t, func() {
		b := model.Bin{Min: 1, Max: 2}
		So(b.Contains(1), ShouldBeTrue)
		So(b.Contains(2), ShouldBeTrue)
		So(b.Contains(2.0001), ShouldBeFalse)
		So(b.Contains(math.NaN()), ShouldBeFalse)
	})
}

func TestColor(t *testing.T) {
	Convey("Given colors", t, func() {
		So(model.White.CSS(), ShouldEqual, "rgb(255,255,255)")
		So(model.Yellow.Hex(), ShouldEqual, "#ffff00")
		So(model.Color{R: 0.5, G: 0, B: 1, A: 0.5}.CSS(), ShouldEqual, "rgba(128,0,255,0.5)")
		So(model.Color{R: -1, G: 2, B: 0, A: 1}.Hex(), ShouldEqual, "#00ff00")
	})
}
