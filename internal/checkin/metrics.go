package checkin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkinsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "attendance_checkins_recorded_total",
	Help: "Number of check-in scans accepted and appended to the log.",
})
