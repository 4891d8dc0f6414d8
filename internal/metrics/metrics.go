package metrics

import (
	"io"
	"log/slog"
	"time"

	"github.com/uber-go/tally"
)

// Metric names emitted by the engine.
const (
	DatagramsReceived = "datagrams_received"
	DatagramsSent     = "datagrams_sent"
	SendErrors        = "send_errors"
	ReceiveErrors     = "receive_errors"
	DecodeErrors      = "decode_errors"
	Dropped           = "dropped"
	TransfersOk       = "transfers_completed"
	TransfersFailed   = "transfers_failed"
	SessionsEvicted   = "sessions_evicted"
	DevicesEvicted    = "devices_evicted"
	Devices           = "devices"
	Sessions          = "sessions"
)

// NewRootScope returns a scope that reports to the default slog logger
// every interval.
func NewRootScope(prefix string, interval time.Duration) (tally.Scope, io.Closer) {
	return tally.NewRootScope(tally.ScopeOptions{
		Prefix:   prefix,
		Reporter: slogReporter{},
	}, interval)
}

type slogReporter struct{}

func (slogReporter) Capabilities() tally.Capabilities { return slogReporter{} }
func (slogReporter) Reporting() bool                  { return true }
func (slogReporter) Tagging() bool                    { return true }
func (slogReporter) Flush()                           {}

func (slogReporter) ReportCounter(name string, tags map[string]string, value int64) {
	slog.Info("metric", "name", name, "tags", tags, "counter", value)
}

func (slogReporter) ReportGauge(name string, tags map[string]string, value float64) {
	slog.Info("metric", "name", name, "tags", tags, "gauge", value)
}

func (slogReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	slog.Info("metric", "name", name, "tags", tags, "timer", interval)
}

func (slogReporter) ReportHistogramValueSamples(name string, tags map[string]string,
	_ tally.Buckets, lower, upper float64, samples int64) {
	slog.Info("metric", "name", name, "tags", tags, "lower", lower, "upper", upper, "samples", samples)
}

func (slogReporter) ReportHistogramDurationSamples(name string, tags map[string]string,
	_ tally.Buckets, lower, upper time.Duration, samples int64) {
	slog.Info("metric", "name", name, "tags", tags, "lower", lower, "upper", upper, "samples", samples)
}
