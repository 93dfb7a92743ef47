package base

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
)

// MetricFactory creates and registers Prometheus counters, with a name prefix and fixed labels
// shared by all metrics created from the same factory
type MetricFactory struct {
	namePrefix   string
	constLabels  prometheus.Labels
	registryLock sync.Mutex
	registry     map[string]prometheus.Collector
}

// NewMetricFactory creates a factory with prefix for metric names and fixed labels for all
// metrics created from this factory
func NewMetricFactory(prefix string, labelNames []string, labelValues []string) *MetricFactory {
	if len(labelNames) != len(labelValues) {
		logger.Panicf("different len of labelNames (%s) and labelValues (%s)",
			strings.Join(labelNames, ","), strings.Join(labelValues, ","))
	}
	constLabels := make(prometheus.Labels, len(labelNames))
	for i, name := range labelNames {
		constLabels[name] = labelValues[i]
	}
	return &MetricFactory{
		namePrefix:  prefix,
		constLabels: constLabels,
		registry:    make(map[string]prometheus.Collector, 100),
	}
}

// AddOrGetCounter adds or gets a counter with all label values resolved
func (factory *MetricFactory) AddOrGetCounter(name string, help string, labelNames []string, labelValues []string) promext.RWCounter {
	if len(labelNames) != len(labelValues) {
		logger.Panicf("different lengths of labelNames (%s) and labelValues (%s)",
			strings.Join(labelNames, ","), strings.Join(labelValues, ","))
	}
	return factory.AddOrGetCounterVec(name, help, labelNames).WithLabelValues(labelValues...)
}

// AddOrGetCounterVec adds or gets a counter-vec; label values are resolved by the caller
func (factory *MetricFactory) AddOrGetCounterVec(name string, help string, labelNames []string) *promext.RWCounterVec {
	fullName := factory.namePrefix + name

	factory.registryLock.Lock()
	defer factory.registryLock.Unlock()

	if existing, ok := factory.registry[fullName]; ok {
		return existing.(*promext.RWCounterVec)
	}
	counterOpts := prometheus.CounterOpts{}
	counterOpts.Name = fullName
	counterOpts.Help = help
	counterOpts.ConstLabels = factory.constLabels
	counterVec := promext.NewRWCounterVec(counterOpts, labelNames)
	factory.registry[fullName] = counterVec
	if err := prometheus.Register(counterVec); err != nil {
		logger.Panicf("failed to register counter-vec '%s': %s", fullName, err.Error())
	}
	return counterVec
}
