package llm

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-20241022"
)

// Options configures the Anthropic client.
type Options struct {
	APIKey    string        `json:"api-key" mapstructure:"api-key"`
	BaseURL   string        `json:"base-url" mapstructure:"base-url"`
	Model     string        `json:"model" mapstructure:"model"`
	MaxTokens int           `json:"max-tokens" mapstructure:"max-tokens"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	// Retries applies to model calls only.
	Retries int `json:"retries" mapstructure:"retries"`
	// ValidateKey sends a one-token request before the session starts.
	ValidateKey bool `json:"validate" mapstructure:"validate"`
}

func NewOptions() *Options {
	return &Options{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		MaxTokens:   300,
		Timeout:     60 * time.Second,
		Retries:     3,
		ValidateKey: true,
	}
}

func (o *Options) Validate() []error {
	errs := []error{}
	if u, err := url.Parse(o.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("--llm.base-url %q is not an absolute URL", o.BaseURL))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("--llm.model must not be empty"))
	}
	if o.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("--llm.max-tokens must be positive"))
	}
	if o.Retries < 0 {
		errs = append(errs, fmt.Errorf("--llm.retries must not be negative"))
	}
	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.APIKey, "llm.api-key", o.APIKey, "Anthropic API key. Falls back to ANTHROPIC_API_KEY, then to an interactive prompt.")
	fs.StringVar(&o.BaseURL, "llm.base-url", o.BaseURL, "Anthropic API base URL.")
	fs.StringVar(&o.Model, "llm.model", o.Model, "Model used to select tools and suggest fixes.")
	fs.IntVar(&o.MaxTokens, "llm.max-tokens", o.MaxTokens, "Maximum tokens per model reply.")
	fs.DurationVar(&o.Timeout, "llm.timeout", o.Timeout, "Timeout of a single model request.")
	fs.IntVar(&o.Retries, "llm.retries", o.Retries, "Retries of a model request on 429 and 5xx responses.")
	fs.BoolVar(&o.ValidateKey, "llm.validate", o.ValidateKey, "Check the API key with a one-token request before starting.")
}
