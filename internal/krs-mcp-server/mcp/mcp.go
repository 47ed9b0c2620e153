package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/fleezesd/krs/internal/krs-mcp-server/pods"
	"github.com/fleezesd/krs/pkg/kubernetes"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/version"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	configuration *configuration
	server        *server.MCPServer
	registry      *Registry
	synthesizer   *pods.Synthesizer

	mu sync.RWMutex
	k  *kubernetes.Kubernetes
}

type configuration struct {
	kubeConfig string
	// createConcurrency caps parallel creates in one batch; 0 is unlimited.
	createConcurrency int
	image             string
}

// ServerOption tunes a Server.
type ServerOption func(*configuration)

func WithCreateConcurrency(n int) ServerOption {
	return func(c *configuration) { c.createConcurrency = n }
}

// WithDefaultImage sets the image of synthesized containers.
func WithDefaultImage(image string) ServerOption {
	return func(c *configuration) {
		if image != "" {
			c.image = image
		}
	}
}

func NewServer(kubeConfig string, opts ...ServerOption) (*Server, error) {
	s := newServer(kubeConfig, opts...)
	if err := s.reloadKubernetesClient(); err != nil {
		return nil, err
	}
	s.kube().WatchKubeConfig(s.reloadKubernetesClient)
	return s, nil
}

// NewServerWithKubernetes builds a Server around an existing client. The
// kubeconfig is not watched.
func NewServerWithKubernetes(k *kubernetes.Kubernetes, opts ...ServerOption) *Server {
	s := newServer(k.Kubeconfig, opts...)
	s.k = k
	return s
}

func newServer(kubeConfig string, opts ...ServerOption) *Server {
	cfg := &configuration{
		kubeConfig: kubeConfig,
		image:      pods.DefaultImage,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	synthesizer := pods.NewSynthesizer()
	synthesizer.Image = cfg.image

	s := &Server{
		configuration: cfg,
		synthesizer:   synthesizer,
		server: server.NewMCPServer(
			"krs-mcp-server",
			version.Get().GitVersion,
			server.WithResourceCapabilities(true, true),
			server.WithPromptCapabilities(true),
			server.WithToolCapabilities(true),
			server.WithLogging(),
		),
	}
	s.registry = NewRegistry(s.tools()...)
	s.server.SetTools(s.registry.ServerTools()...)
	return s
}

func (s *Server) reloadKubernetesClient() error {
	k, err := kubernetes.NewKubernetes(s.configuration.kubeConfig)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.k != nil {
		// the watcher belongs to the first client; keep it reachable for Stop
		k.CloseWatchKubeConfig = s.k.CloseWatchKubeConfig
	}
	s.k = k
	log.Infow("Kubernetes client loaded", "kubeconfig", s.configuration.kubeConfig, "inCluster", k.IsInCluster())
	return nil
}

func (s *Server) kube() *kubernetes.Kubernetes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k
}

// Registry returns the tool catalog served by s.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run serves MCP over SSE plus the REST mirror when ssePort is set, over stdio
// otherwise, until stopCh closes.
func (s *Server) Run(sseBaseURL string, ssePort int, stopCh <-chan struct{}) error {
	defer s.Stop()
	log.Infow("Starting krs mcp server", "tools", s.registry.Names())

	if ssePort > 0 {
		return s.serveHTTP(sseBaseURL, ssePort, stopCh)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ServeStdio(s.server) }()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-stopCh:
	}
	return nil
}

func (s *Server) serveHTTP(sseBaseURL string, ssePort int, stopCh <-chan struct{}) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", ssePort),
		Handler:           s.Handler(sseBaseURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("SSE server starting", "port", ssePort, "baseURL", sseBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Errorw(err, "Failed to start SSE server")
			return err
		}
		return nil
	case <-stopCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func (s *Server) Stop() {
	if k := s.kube(); k != nil {
		k.Close()
	}
}
