package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithLatencyBuckets([]float64{1, 2, 3}),
				WithHTTPBuckets([]float64{10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.submissions.WithLabelValues(SubmissionNew).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_submissions_total"], ShouldBeTrue)
			})

			Convey("Then empty options keep defaults", func() {
				m := NewManager(WithNamespace(""), WithSubsystem(""), WithLatencyBuckets(nil), WithHTTPBuckets(nil),
					WithPrometheusRegistry(prometheus.NewRegistry()))
				So(m.namespace, ShouldEqual, "buildcard")
				So(m.subsystem, ShouldEqual, "service")
				So(len(m.latencyBuckets), ShouldBeGreaterThan, 0)
				So(len(m.httpBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording submissions", func() {
			before := testutil.ToFloat64(globalManager.submissions.WithLabelValues(SubmissionImproved))
			RecordSubmission(SubmissionImproved)
			RecordSubmission(SubmissionImproved)

			Convey("Then the outcome counter grows", func() {
				after := testutil.ToFloat64(globalManager.submissions.WithLabelValues(SubmissionImproved))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording store errors", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("file", "write"))
			RecordStoreError("file", "write")

			Convey("Then the labelled counter grows", func() {
				So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("file", "write"))-before, ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateProfilesLoaded(12)
			UpdateCacheEntries(3)

			Convey("Then gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.profilesLoaded), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.cacheEntries), ShouldEqual, 3)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordScoringLatency(1.5)
				RecordScoringError("unknown_kind")
				RecordLeaderboardUpdateLatency(0.3)
				RecordProfileReload(true)
				RecordProfileReload(false)
				RecordCacheHit()
				RecordCacheMiss()
				RecordHTTPRequest("score", "POST", "200")
				RecordHTTPRequestDuration("score", "POST", "200", 12)
				RecordErrorByEndpoint("score", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
