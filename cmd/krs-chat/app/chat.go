package app

import (
	"context"
	"os"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/fleezesd/krs/cmd/krs-chat/app/options"
	krschat "github.com/fleezesd/krs/internal/krs-chat"
	"github.com/fleezesd/krs/pkg/app"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/trace"
)

const commandDesc = `
  Conversational Kubernetes operator

  Type what you want done in plain language. A model picks the matching tool,
  which runs either in-process against your kubeconfig or on a remote
  krs-mcp-server. Deleting a pod whose name does not match asks for
  confirmation of the closest existing name. Failed log reads come with a
  step-by-step troubleshooting suggestion.

  Examples:
    # Run the tools in-process
    ANTHROPIC_API_KEY=... krs-chat

    # Use a running krs-mcp-server
    krs-chat --server-url http://localhost:8080/sse
`

func NewApp() *app.App {
	opts := options.NewOptions()

	application := app.NewApp("krs-chat", "Chat with your Kubernetes cluster",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithSilence(),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.Options) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		shutdown, err := trace.Init(context.Background(), opts.Trace)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()

		ctx := genericapiserver.SetupSignalContext()
		if err := ensureAPIKey(ctx, opts.LLM, os.Stdin, os.Stdout); err != nil {
			return err
		}

		cfg, err := opts.Config()
		if err != nil {
			return err
		}
		return Run(ctx, cfg)
	}
}

func Run(ctx context.Context, c *krschat.Config) error {
	s, err := c.Complete().New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Errorw(err, "Failed to close tools")
		}
	}()

	log.Infow("Chat session started", "session", s.ID())
	return s.Run(ctx, os.Stdin)
}
