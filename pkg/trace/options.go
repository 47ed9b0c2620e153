package trace

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options configures the OpenTelemetry exporter.
type Options struct {
	// Endpoint is the OTLP gRPC collector address. Tracing is disabled when empty.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `json:"insecure" mapstructure:"insecure"`
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `json:"service-name" mapstructure:"service-name"`
	// SampleRatio is the fraction of traces recorded, between 0 and 1.
	SampleRatio float64 `json:"sample-ratio" mapstructure:"sample-ratio"`
}

func NewOptions(serviceName string) *Options {
	return &Options{
		ServiceName: serviceName,
		SampleRatio: 1,
		Insecure:    true,
	}
}

func (o *Options) Validate() []error {
	errs := []error{}
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("--trace.sample-ratio must be within [0, 1], got %v", o.SampleRatio))
	}
	if o.Endpoint != "" && o.ServiceName == "" {
		errs = append(errs, fmt.Errorf("--trace.service-name is required when tracing is enabled"))
	}
	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Endpoint, "trace.endpoint", o.Endpoint, "OTLP gRPC collector endpoint (e.g. localhost:4317). Tracing is disabled when empty.")
	fs.BoolVar(&o.Insecure, "trace.insecure", o.Insecure, "Connect to the collector without TLS.")
	fs.StringVar(&o.ServiceName, "trace.service-name", o.ServiceName, "Service name reported with every span.")
	fs.Float64Var(&o.SampleRatio, "trace.sample-ratio", o.SampleRatio, "Fraction of traces to record.")
}
