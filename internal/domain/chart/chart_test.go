package chart

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

func TestBarColor(t *testing.T) {
	convey.Convey("Given the traffic-light thresholds", t, func() {
		convey.Convey("Then grades at or above 9 are green", func() {
			convey.So(BarColor(10), convey.ShouldEqual, "#28a745")
			convey.So(BarColor(9), convey.ShouldEqual, "#28a745")
		})

		convey.Convey("And grades at or above 7 but below 9 are amber", func() {
			convey.So(BarColor(8.99), convey.ShouldEqual, "#ffc107")
			convey.So(BarColor(7), convey.ShouldEqual, "#ffc107")
		})

		convey.Convey("And grades below 7 are red", func() {
			convey.So(BarColor(6.99), convey.ShouldEqual, "#dc3545")
			convey.So(BarColor(0), convey.ShouldEqual, "#dc3545")
		})
	})
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a list of graded subjects", t, func() {
		subjects := []model.Subject{
			{Name: "Mathematics", Grade: 9.5},
			{Name: "Physics", Grade: 7.2},
			{Name: "History", Grade: 6.1},
		}

		convey.Convey("When building the chart props", func() {
			props, ok := Build(subjects)

			convey.Convey("Then the sequences are parallel and ordered as given", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(props.Labels, convey.ShouldResemble, []string{"Mathematics", "Physics", "History"})
				convey.So(props.Values, convey.ShouldResemble, []float64{9.5, 7.2, 6.1})
				convey.So(props.Colors, convey.ShouldResemble, []string{"#28a745", "#ffc107", "#dc3545"})
			})

			convey.Convey("And the axis is pinned to the grade scale", func() {
				convey.So(props.YMin, convey.ShouldEqual, 0)
				convey.So(props.YMax, convey.ShouldEqual, 10)
			})
		})
	})

	convey.Convey("Given no subjects", t, func() {
		convey.Convey("When building the chart props", func() {
			_, ok := Build(nil)

			convey.Convey("Then no chart is produced", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})
	})
}
