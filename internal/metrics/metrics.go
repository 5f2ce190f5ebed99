// Package metrics 提供Prometheus监控指标
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	MetricRequests        = "shiftweek_http_requests_total"
	MetricRequestDuration = "shiftweek_http_request_duration_seconds"
	MetricRuns            = "shiftweek_schedule_runs_total"
	MetricRunDuration     = "shiftweek_schedule_run_duration_seconds"
	MetricAssignments     = "shiftweek_assignments_total"
	MetricUnderstaffed    = "shiftweek_understaffed_slots"
	MetricFillRate        = "shiftweek_fill_rate"
	MetricArchives        = "shiftweek_archive_total"
)

// MetricsRegistry 指标注册表
type MetricsRegistry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *MetricsRegistry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *MetricsRegistry {
	once.Do(func() {
		registry = NewRegistry()
		initDefaultMetrics(registry)
	})
	return registry
}

// NewRegistry 创建空注册表
func NewRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// initDefaultMetrics 初始化默认指标
func initDefaultMetrics(r *MetricsRegistry) {
	r.NewCounter(MetricRequests, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(MetricRequestDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5})

	// source: api/cli；status: staffed/understaffed/error
	r.NewCounter(MetricRuns, "排班生成次数", []string{"source", "status"})
	r.NewHistogram(MetricRunDuration, "排班生成耗时",
		[]string{"source"},
		[]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5})

	// pass: preference/fair_fill/resolver
	r.NewCounter(MetricAssignments, "各阶段分配人次", []string{"pass"})

	r.NewGauge(MetricUnderstaffed, "最近一次排班人手不足的班次数", []string{})
	r.NewGauge(MetricFillRate, "最近一次排班的达标率", []string{})

	r.NewCounter(MetricArchives, "排班归档次数", []string{"status"})
}

// NewCounter 创建计数器
func (r *MetricsRegistry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *MetricsRegistry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *MetricsRegistry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *MetricsRegistry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *MetricsRegistry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *MetricsRegistry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 返回当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Value 返回当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	// 只记录首个命中的 bucket，输出时再累加
	placed := false
	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
			placed = true
			break
		}
	}
	if !placed {
		h.counts[key][len(h.Buckets)]++ // +Inf bucket
	}

	h.sums[key] += value
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	return strings.Join(labels, ",")
}

// Handler 返回Prometheus格式的指标HTTP处理器
func Handler() http.Handler {
	return GetRegistry().Handler()
}

// Handler 返回该注册表的HTTP处理器
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Expose(w)
	})
}

// Expose 按名称顺序输出全部指标
func (r *MetricsRegistry) Expose(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		counter := r.counters[name]
		fmt.Fprintf(w, "# HELP %s %s\n", counter.Name, counter.Help)
		fmt.Fprintf(w, "# TYPE %s counter\n", counter.Name)

		counter.mu.RLock()
		for _, key := range sortedKeys(counter.values) {
			fmt.Fprintf(w, "%s%s %s\n", counter.Name, braces(formatLabels(counter.Labels, key)), formatValue(counter.values[key]))
		}
		counter.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.gauges) {
		gauge := r.gauges[name]
		fmt.Fprintf(w, "# HELP %s %s\n", gauge.Name, gauge.Help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", gauge.Name)

		gauge.mu.RLock()
		for _, key := range sortedKeys(gauge.values) {
			fmt.Fprintf(w, "%s%s %s\n", gauge.Name, braces(formatLabels(gauge.Labels, key)), formatValue(gauge.values[key]))
		}
		gauge.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.histograms) {
		histogram := r.histograms[name]
		fmt.Fprintf(w, "# HELP %s %s\n", histogram.Name, histogram.Help)
		fmt.Fprintf(w, "# TYPE %s histogram\n", histogram.Name)

		histogram.mu.RLock()
		for _, key := range sortedKeys(histogram.counts) {
			counts := histogram.counts[key]
			labels := formatLabels(histogram.Labels, key)
			prefix := ""
			if labels != "" {
				prefix = labels + ","
			}

			cumulative := 0
			for i, bucket := range histogram.Buckets {
				cumulative += counts[i]
				fmt.Fprintf(w, "%s_bucket{%sle=\"%s\"} %d\n", histogram.Name, prefix, formatValue(bucket), cumulative)
			}
			cumulative += counts[len(histogram.Buckets)]
			fmt.Fprintf(w, "%s_bucket{%sle=\"+Inf\"} %d\n", histogram.Name, prefix, cumulative)
			fmt.Fprintf(w, "%s_sum%s %s\n", histogram.Name, braces(labels), formatValue(histogram.sums[key]))
			fmt.Fprintf(w, "%s_count%s %d\n", histogram.Name, braces(labels), cumulative)
		}
		histogram.mu.RUnlock()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func braces(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}

// formatLabels 格式化标签
func formatLabels(names []string, key string) string {
	if len(names) == 0 {
		return ""
	}
	vals := strings.Split(key, ",")
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", name, val))
	}
	return strings.Join(parts, ",")
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	r := GetRegistry()
	if counter := r.GetCounter(MetricRequests); counter != nil {
		counter.Inc(method, path, strconv.Itoa(status))
	}
	if histogram := r.GetHistogram(MetricRequestDuration); histogram != nil {
		histogram.Observe(duration.Seconds(), method, path)
	}
}

// RunSummary 一次排班的指标数据
type RunSummary struct {
	Source       string
	Status       string
	Duration     time.Duration
	Preference   int
	FairFill     int
	Resolver     int
	Understaffed int
	FillRate     float64
}

// RecordScheduleRun 记录排班生成指标
func RecordScheduleRun(s RunSummary) {
	r := GetRegistry()

	if counter := r.GetCounter(MetricRuns); counter != nil {
		counter.Inc(s.Source, s.Status)
	}
	if histogram := r.GetHistogram(MetricRunDuration); histogram != nil {
		histogram.Observe(s.Duration.Seconds(), s.Source)
	}
	if s.Status == "error" {
		return
	}

	if counter := r.GetCounter(MetricAssignments); counter != nil {
		counter.Add(float64(s.Preference), "preference")
		counter.Add(float64(s.FairFill), "fair_fill")
		counter.Add(float64(s.Resolver), "resolver")
	}
	if gauge := r.GetGauge(MetricUnderstaffed); gauge != nil {
		gauge.Set(float64(s.Understaffed))
	}
	if gauge := r.GetGauge(MetricFillRate); gauge != nil {
		gauge.Set(s.FillRate)
	}
}

// RecordArchive 记录归档结果
func RecordArchive(ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	if counter := GetRegistry().GetCounter(MetricArchives); counter != nil {
		counter.Inc(status)
	}
}
