package dqm

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	metricEntries = "ecal_dqm_me_entries"
	metricMean    = "ecal_dqm_me_mean"
	metricRMS     = "ecal_dqm_me_rms"
)

func labelPair(name string, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}

func gaugeMetric(labels []*dto.LabelPair, value float64) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: &value},
	}
}

func newGaugeFamily(name string, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: &name,
		Help: &help,
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// MetricFamilies converts the MEs into gauges, one sample per filled bin.
// Mean and RMS are only exported for profiles.
func MetricFamilies(mes []*MonitorElement) []*dto.MetricFamily {
	entries := newGaugeFamily(metricEntries, "Entries per bin of each monitor element.")
	means := newGaugeFamily(metricMean, "Mean per bin of each profile monitor element.")
	rms := newGaugeFamily(metricRMS, "RMS per bin of each profile monitor element.")

	for _, me := range mes {
		for _, bin := range me.Bins() {
			labels := []*dto.LabelPair{
				labelPair("dcc", strconv.Itoa(bin.Dcc)),
				labelPair("kind", me.Data.Kind.String()),
				labelPair("me", me.Name),
				labelPair("x", strconv.Itoa(bin.X)),
				labelPair("y", strconv.Itoa(bin.Y)),
			}
			entries.Metric = append(entries.Metric, gaugeMetric(labels, me.Entries(bin)))
			if me.Data.Kind.IsProfile() {
				means.Metric = append(means.Metric, gaugeMetric(labels, me.Mean(bin)))
				rms.Metric = append(rms.Metric, gaugeMetric(labels, me.RMS(bin)))
			}
		}
	}

	families := []*dto.MetricFamily{entries}
	if len(means.Metric) > 0 {
		families = append(families, means, rms)
	}
	return families
}

func WriteMetrics(w io.Writer, mes []*MonitorElement) error {
	for _, mf := range MetricFamilies(mes) {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("error writing metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// MetricsPublisher serves the last published ME snapshot in the Prometheus
// text format. Update is called from the goroutine that owns the MEs.
type MetricsPublisher struct {
	mu       sync.RWMutex
	snapshot []byte
}

func NewMetricsPublisher() *MetricsPublisher {
	return &MetricsPublisher{}
}

func (p *MetricsPublisher) Update(mes []*MonitorElement) error {
	var buf bytes.Buffer
	if err := WriteMetrics(&buf, mes); err != nil {
		return err
	}
	p.mu.Lock()
	p.snapshot = buf.Bytes()
	p.mu.Unlock()
	return nil
}

func (p *MetricsPublisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	snapshot := p.snapshot
	p.mu.RUnlock()

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.Write(snapshot)
}
