package options

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/jinzhu/copier"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	krschat "github.com/fleezesd/krs/internal/krs-chat"
	"github.com/fleezesd/krs/internal/krs-chat/llm"
	"github.com/fleezesd/krs/internal/krs-chat/session"
	"github.com/fleezesd/krs/internal/krs-mcp-server/pods"
	"github.com/fleezesd/krs/pkg/app"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/trace"
)

// APIKeyEnv is read when no key is configured.
const APIKeyEnv = "ANTHROPIC_API_KEY"

var _ app.CliOptions = (*Options)(nil)

type Options struct {
	ServerURL         string         `json:"server-url" mapstructure:"server-url"`
	KubeConfig        string         `json:"kubeconfig" mapstructure:"kubeconfig"`
	CreateConcurrency int            `json:"create-concurrency" mapstructure:"create-concurrency"`
	Image             string         `json:"image" mapstructure:"image"`
	ToolTimeout       time.Duration  `json:"tool-timeout" mapstructure:"tool-timeout"`
	LLM               *llm.Options   `json:"llm" mapstructure:"llm"`
	Log               *log.Options   `json:"log" mapstructure:"log"`
	Trace             *trace.Options `json:"trace" mapstructure:"trace"`
}

func NewOptions() *Options {
	o := &Options{
		Image:       pods.DefaultImage,
		ToolTimeout: session.DefaultToolTimeout,
		LLM:         llm.NewOptions(),
		Log:         log.NewOptions(),
		Trace:       trace.NewOptions("krs-chat"),
	}
	o.Log.OutputPaths = []string{"stderr"}
	o.Log.Level = "warn"
	return o
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.Log.AddFlags(fss.FlagSet("logs"))
	o.Trace.AddFlags(fss.FlagSet("trace"))
	o.LLM.AddFlags(fss.FlagSet("llm"))
	fs := fss.FlagSet("krs-chat")
	fs.StringVar(&o.ServerURL, "server-url", "", "SSE endpoint of a running krs-mcp-server (e.g. http://localhost:8080/sse). Tools run in-process when empty.")
	fs.StringVar(&o.KubeConfig, "kubeconfig", "", "Path to a kubeconfig for in-process tools. Only required if out-of-cluster.")
	fs.IntVar(&o.CreateConcurrency, "create-concurrency", 0, "Maximum pods created in parallel by one create_pod call, 0 for no limit.")
	fs.StringVar(&o.Image, "image", o.Image, "Container image used for synthesized pods.")
	fs.DurationVar(&o.ToolTimeout, "tool-timeout", o.ToolTimeout, "Time a single tool call may take before it is reported as timed out.")
	return fss
}

func (o *Options) Complete() error {
	if err := viper.Unmarshal(&o); err != nil {
		return err
	}
	if o.LLM.APIKey == "" {
		o.LLM.APIKey = os.Getenv(APIKeyEnv)
	}
	return nil
}

func (o *Options) Validate() error {
	errs := []error{}

	if o.ServerURL != "" {
		if u, err := url.Parse(o.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("--server-url %q is not an absolute URL", o.ServerURL))
		}
	}
	if o.ToolTimeout <= 0 {
		errs = append(errs, fmt.Errorf("--tool-timeout must be positive"))
	}
	if o.CreateConcurrency < 0 {
		errs = append(errs, fmt.Errorf("--create-concurrency must not be negative"))
	}
	errs = append(errs, o.LLM.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Trace.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *Options) ApplyTo(c *krschat.Config) error {
	return copier.CopyWithOption(c, o, copier.Option{IgnoreEmpty: true, DeepCopy: true})
}

// Config returns the krs-chat config built from the options.
func (o *Options) Config() (*krschat.Config, error) {
	c := &krschat.Config{}

	if err := o.ApplyTo(c); err != nil {
		return nil, err
	}
	return c, nil
}
