package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChecksRun = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birthday_bot_checks_total",
		Help: "Total number of check passes, by trigger (manual, scheduled)",
	}, []string{"trigger"})
	EventsMatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birthday_bot_events_total",
		Help: "Total number of matched notification events, by kind",
	}, []string{"kind"})
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birthday_bot_mail_send_success_total",
		Help: "Total number of notification emails accepted by the delivery provider",
	}, []string{"provider"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birthday_bot_mail_send_failure_total",
		Help: "Total number of notification emails the delivery provider rejected",
	}, []string{"provider"})
	MailSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birthday_bot_mail_skipped_total",
		Help: "Total number of notifications not sent, by reason (dry_run, misconfigured)",
	}, []string{"reason"})
	ConfiguredRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "birthday_bot_configured_records",
		Help: "Number of friend records loaded by the most recent configuration read",
	})
)

func init() {
	prometheus.MustRegister(ChecksRun)
	prometheus.MustRegister(EventsMatched)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailSkipped)
	prometheus.MustRegister(ConfiguredRecords)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
