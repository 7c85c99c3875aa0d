package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When a manager is built with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(m.namespace, ShouldEqual, "test")
				So(m.subsystem, ShouldEqual, "unit")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(m.constLabels["env"], ShouldEqual, "test")
			})

			Convey("And collectors are registered under the namespace", func() {
				m.jobsPosted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_jobs_posted_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are given", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "bidhub")
				So(m.subsystem, ShouldEqual, "marketplace")
				So(m.histogramBuckets, ShouldResemble, latencyBucketsMs)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When marketplace activity is recorded", func() {
			before := testutil.ToFloat64(globalManager.bidsPlaced)
			RecordBidPlaced(1200)
			RecordBidPlaced(800)
			RecordJobPosted()
			RecordUserRegistered("freelancer")
			RecordLogin("success")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.bidsPlaced), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.usersRegistered.WithLabelValues("freelancer")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.logins.WithLabelValues("success")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When pipeline gauges are updated", func() {
			UpdateQueueSize(12)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.12)
			UpdateWorkerCount(4)
			UpdateRankedFreelancers(42)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.12)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.rankedFreelancers), ShouldEqual, 42)
			})
		})

		Convey("When events are dropped or deduplicated", func() {
			RecordEventEnqueued("bid_placed")
			RecordEventDropped("queue_full")
			RecordEventDuplicate()
			RecordNotificationCreated("bid_received")

			Convey("Then labelled series exist", func() {
				So(testutil.ToFloat64(globalManager.eventsDropped.WithLabelValues("queue_full")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.eventsEnqueued.WithLabelValues("bid_placed")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When histograms and HTTP metrics are recorded", func() {
			So(func() {
				RecordWorkerProcessingLatency(3.5)
				RecordWorkerError()
				RecordStoreLatency("jobs", "find", 1.2)
				RecordStoreError("jobs", "find")
				RecordRankingRebuild(8, 1700000000)
				RecordHTTPRequest("/jobs", "GET", "200")
				RecordHTTPRequestDuration("/jobs", "GET", "200", 4.2)
				RecordErrorByEndpoint("/bids", "POST", "conflict")
				RecordErrorByComponent("worker", "store")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(30)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)

			Convey("Then the registry exposes them", func() {
				n, err := testutil.GatherAndCount(GetRegistry(), "bidhub_marketplace_http_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThanOrEqualTo, 1)

				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "bidhub_marketplace_ranking_rebuild_latency_milliseconds")
			})
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given edge values", t, func() {
		So(func() {
			UpdateQueueSize(0)
			UpdateWorkerCount(0)
			RecordWorkerProcessingLatency(0)
			RecordBidPlaced(0.01)
			RecordHTTPRequest("", "", "")
			RecordErrorByComponent("", "")
		}, ShouldNotPanic)
	})
}
