package sync

import "k8s.io/klog/v2"

// Reporter receives progress and failure messages from a run. Injected
// so callers can capture output (CLI, tests) instead of sharing a
// process-wide logger.
type Reporter interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type klogReporter struct{}

func (klogReporter) Infof(format string, args ...interface{}) {
	klog.Infof(format, args...)
}

func (klogReporter) Errorf(format string, args ...interface{}) {
	klog.Errorf(format, args...)
}
