package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should own a private registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "feedback")
			})
		})

		Convey("When creating two managers", func() {
			Convey("Then registration should not collide", func() {
				So(func() { NewManager(); NewManager() }, ShouldNotPanic)
			})
		})

		Convey("When runtime collectors are requested", func() {
			manager := NewManager(WithRuntimeCollectors(), WithNamespace("test"))

			Convey("Then gathering should include go metrics", func() {
				families, err := manager.Registry().Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "go_goroutines" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		manager := NewManager(WithHistogramBuckets([]float64{0.01, 0.1, 1}))

		Convey("When submission steps are recorded", func() {
			manager.SubmissionStep("identity", "ok")
			manager.SubmissionStep("identity", "ok")
			manager.SubmissionStep("rating_batch", "failed")
			manager.Submission("both")

			Convey("Then counters should reflect them", func() {
				So(testutil.ToFloat64(manager.submissionSteps.WithLabelValues("identity", "ok")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.submissionSteps.WithLabelValues("rating_batch", "failed")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.submissions.WithLabelValues("both")), ShouldEqual, 1)
			})
		})

		Convey("When dashboard fetches are observed", func() {
			manager.ObserveDashboardFetch("overview", 5*time.Millisecond, nil)
			manager.ObserveDashboardFetch("overview", 5*time.Millisecond, errors.New("boom"))
			manager.CacheHit()
			manager.CacheMiss()
			manager.CacheMiss()

			Convey("Then only failures should be counted as errors", func() {
				So(testutil.ToFloat64(manager.dashboardErrors.WithLabelValues("overview")), ShouldEqual, 1)
				So(testutil.CollectAndCount(manager.dashboardLatency), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.dashboardCache.WithLabelValues("miss")), ShouldEqual, 2)
			})
		})

		Convey("When requests are rate limited", func() {
			manager.RateLimited("/feedback.v1.Feedback/Submit")

			Convey("Then the method should be labelled", func() {
				So(testutil.ToFloat64(manager.rateLimited.WithLabelValues("/feedback.v1.Feedback/Submit")), ShouldEqual, 1)
			})
		})
	})
}
