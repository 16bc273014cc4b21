package core

// Option configures an Extension.
type Option func(*Extension)

// WithLogger overrides the default no-op logger.
func WithLogger(logger Logger) Option {
	return func(e *Extension) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the wall clock used for metric durations.
func WithClock(clock Clock) Option {
	return func(e *Extension) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(e *Extension) {
		if recorder != nil {
			e.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) Option {
	return func(e *Extension) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}
