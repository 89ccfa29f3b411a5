package clienttracker

// Option configures a Tracker with optional dependencies.
type Option func(*trackerOptions)

// trackerOptions holds optional Tracker configuration.
type trackerOptions struct {
	logger  Logger
	metrics MetricsCollector
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := logging.NewZap(zap.NewExample().Sugar())
//	tracker, err := clienttracker.New(&cfg, store, clienttracker.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *trackerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "tracker")
//	tracker, err := clienttracker.New(&cfg, store, clienttracker.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *trackerOptions) {
		o.metrics = metrics
	}
}
