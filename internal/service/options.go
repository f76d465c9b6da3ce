package service

import (
	"github.com/nikolayk812/artistry-cart/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Revealer receives the transient "cart opened" signal after an item is added.
type Revealer interface {
	Open()
}

type options struct {
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	revealer Revealer
}

type Option func(*options)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRevealer is only used by the cart service.
func WithRevealer(r Revealer) Option {
	return func(o *options) {
		o.revealer = r
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (o options) countMutation(aggregate, op string) {
	if o.metrics != nil {
		o.metrics.Mutations.WithLabelValues(aggregate, op).Inc()
	}
}

func (o options) countPersistFailure(aggregate string) {
	if o.metrics != nil {
		o.metrics.PersistFailures.WithLabelValues(aggregate).Inc()
	}
}

func (o options) countLoadFallback(aggregate, reason string) {
	if o.metrics != nil {
		o.metrics.LoadFallbacks.WithLabelValues(aggregate, reason).Inc()
	}
}
