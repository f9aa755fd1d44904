package scene_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/satlens/internal/adapters/scene"
	"github.com/okian/satlens/internal/domain/model"
	"github.com/okian/satlens/internal/domain/ranking"
	"github.com/okian/satlens/internal/domain/selection"
	. "github.com/smartystreets/goconvey/convey"
)

var _ selection.Scene = (*scene.Scene)(nil)

func TestScene(t *testing.T) {
	Convey("Given a scene loaded with two point markers and one label", t, func() {
		s := scene.New(scene.WithFlyDuration(10 * time.Millisecond))
		s.Load([]model.Entity{
			{ID: "A", HasPoint: true},
			{ID: "B", HasPoint: true},
			{ID: "L"},
		})

		Convey("Then markers start yellow and labels have none", func() {
			c, ok := s.PointColor("A")
			So(ok, ShouldBeTrue)
			So(c, ShouldResemble, model.Yellow)
			So(s.SetPointColor("L", model.White), ShouldBeFalse)
		})

		Convey("When a marker is recolored and the dataset reloaded", func() {
			So(s.SetPointColor("A", model.White), ShouldBeTrue)
			s.AttachPath("B")
			s.Load([]model.Entity{{ID: "A", HasPoint: true}, {ID: "C", HasPoint: true}})

			Convey("Then surviving markers keep their color and stale paths go", func() {
				c, _ := s.PointColor("A")
				So(c, ShouldResemble, model.White)
				c, _ = s.PointColor("C")
				So(c, ShouldResemble, model.Yellow)
				So(s.View().Paths, ShouldBeEmpty)
			})
		})

		Convey("When picking near a placed marker", func() {
			s.SetScreenPosition("A", 100, 100)
			s.SetScreenPosition("B", 110, 100)

			id, ok := s.PickAt(103, 101)
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, "A")

			_, ok = s.PickAt(300, 300)
			So(ok, ShouldBeFalse)
		})

		Convey("When flying to an object", func() {
			done := make(chan struct{})
			So(s.FlyTo(context.Background(), "A", func() { close(done) }), ShouldBeNil)

			Convey("Then the camera targets it and completion is signalled", func() {
				So(s.View().Camera, ShouldEqual, "A")
				select {
				case <-done:
				case <-time.After(time.Second):
					So("fly-to never completed", ShouldBeEmpty)
				}
				s.FlyHome()
				So(s.View().Camera, ShouldEqual, scene.HomeTarget)
			})
		})

		Convey("When showing legend, rankings, detail and notices", func() {
			s.ShowLegend("DIT", []model.LegendItem{{Label: "0.00 - 1.00"}})
			s.ShowRankings(ranking.Headline, ranking.Result{Metric: "DIT"})
			s.ShowDetail("B")
			for i := 0; i < 20; i++ {
				s.Notify("n")
			}
			v := s.View()

			Convey("Then the view reflects each panel", func() {
				So(v.LegendMetric, ShouldEqual, "DIT")
				So(v.Legend, ShouldHaveLength, 1)
				So(v.Rankings, ShouldNotBeNil)
				So(v.RankingsHeadline, ShouldEqual, ranking.Headline)
				So(v.Detail, ShouldEqual, "B")
				So(v.Notices, ShouldHaveLength, 16)
			})

			Convey("And hiding clears them", func() {
				s.RemoveLegend()
				s.HideRankings()
				s.HideDetail()
				v := s.View()
				So(v.Legend, ShouldBeEmpty)
				So(v.Rankings, ShouldBeNil)
				So(v.Detail, ShouldBeEmpty)
			})
		})

		Convey("When resetting point colors", func() {
			s.SetPointColor("A", model.White)
			s.ResetPointColors(model.Yellow)
			So(s.View().PointColors["A"], ShouldEqual, "rgb(255,255,0)")
		})
	})
}
