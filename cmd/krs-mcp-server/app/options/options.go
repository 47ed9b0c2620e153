package options

import (
	"fmt"

	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	krsmcpserver "github.com/fleezesd/krs/internal/krs-mcp-server"
	"github.com/fleezesd/krs/internal/krs-mcp-server/pods"
	"github.com/fleezesd/krs/pkg/app"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/trace"
)

var _ app.CliOptions = (*Options)(nil)

type Options struct {
	SSEPort           int            `json:"sse-port" mapstructure:"sse-port"`
	SSEBaseURL        string         `json:"sse-base-url" mapstructure:"sse-base-url"`
	KubeConfig        string         `json:"kubeconfig" mapstructure:"kubeconfig"`
	CreateConcurrency int            `json:"create-concurrency" mapstructure:"create-concurrency"`
	Image             string         `json:"image" mapstructure:"image"`
	Log               *log.Options   `json:"log" mapstructure:"log"`
	Trace             *trace.Options `json:"trace" mapstructure:"trace"`
}

func NewOptions() *Options {
	o := &Options{
		Image: pods.DefaultImage,
		Log:   log.NewOptions(),
		Trace: trace.NewOptions("krs-mcp-server"),
	}
	return o
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.Log.AddFlags(fss.FlagSet("logs"))
	o.Trace.AddFlags(fss.FlagSet("trace"))
	fs := fss.FlagSet("krs-mcp-server")
	fs.IntVar(&o.SSEPort, "sse-port", 0, "Start a SSE server on the specified port. The REST mirror and /metrics share the port.")
	fs.StringVar(&o.SSEBaseURL, "sse-base-url", "", "SSE public base URL to use when sending the endpoint message (e.g. https://example.com)")
	fs.StringVar(&o.KubeConfig, "kubeconfig", "", "Path to a kubeconfig. Only required if out-of-cluster.")
	fs.IntVar(&o.CreateConcurrency, "create-concurrency", 0, "Maximum pods created in parallel by one create_pod call, 0 for no limit.")
	fs.StringVar(&o.Image, "image", o.Image, "Container image used for synthesized pods.")
	return fss
}

func (o *Options) Complete() error {
	if err := viper.Unmarshal(&o); err != nil {
		return err
	}
	return nil
}

func (o *Options) Validate() error {
	errs := []error{}

	if o.SSEPort < 0 || o.SSEPort > 65535 {
		errs = append(errs, fmt.Errorf("--sse-port %d must be between 0 and 65535", o.SSEPort))
	}
	if o.CreateConcurrency < 0 {
		errs = append(errs, fmt.Errorf("--create-concurrency must not be negative"))
	}
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Trace.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *Options) ApplyTo(c *krsmcpserver.Config) error {
	c.SSEPort = o.SSEPort
	c.SSEBaseURL = o.SSEBaseURL
	c.KubeConfig = o.KubeConfig
	c.CreateConcurrency = o.CreateConcurrency
	c.Image = o.Image
	return nil
}

// Config returns the krs-mcp-server config built from the options.
func (o *Options) Config() (*krsmcpserver.Config, error) {
	c := &krsmcpserver.Config{}

	if err := o.ApplyTo(c); err != nil {
		return nil, err
	}
	return c, nil
}
