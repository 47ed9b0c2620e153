package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Config(t *testing.T) {
	o := NewOptions()
	o.ServerURL = "http://localhost:8080/sse"
	o.ToolTimeout = 10 * time.Second
	o.LLM.APIKey = "key"

	c, err := o.Config()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/sse", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.ToolTimeout)
	assert.Equal(t, "nginx:latest", c.Image)
	require.NotNil(t, c.LLM)
	assert.Equal(t, "key", c.LLM.APIKey)

	// deep copy: later option changes do not leak into the config
	o.LLM.APIKey = "other"
	assert.Equal(t, "key", c.LLM.APIKey)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Options) {}},
		{name: "relative server url", mutate: func(o *Options) { o.ServerURL = "localhost/sse" }, wantErr: "--server-url"},
		{name: "zero timeout", mutate: func(o *Options) { o.ToolTimeout = 0 }, wantErr: "--tool-timeout"},
		{name: "bad model settings", mutate: func(o *Options) { o.LLM.MaxTokens = 0 }, wantErr: "--llm.max-tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptions_CompleteReadsAPIKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	o := NewOptions()
	require.NoError(t, o.Complete())
	assert.Equal(t, "from-env", o.LLM.APIKey)
}
