package mcp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleezesd/krs/pkg/log"
)

// restResponse is the body of every REST mirror reply.
type restResponse struct {
	Tool   string `json:"tool"`
	Status string `json:"status"`
	Result string `json:"result"`
}

func (s *Server) ServeSse(baseURL string) *server.SSEServer {
	options := make([]server.SSEOption, 0)
	if baseURL != "" {
		options = append(options, server.WithBaseURL(baseURL))
	}
	return server.NewSSEServer(s.server, options...)
}

// Handler routes MCP over SSE, Prometheus metrics and the REST mirror of the
// read-only tools on one listener.
func (s *Server) Handler(sseBaseURL string) http.Handler {
	sse := s.ServeSse(sseBaseURL)

	router := mux.NewRouter()
	router.Handle("/sse", sse).Methods(http.MethodGet)
	router.Handle("/message", sse).Methods(http.MethodPost)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(s.restEngine())
	return router
}

func (s *Server) restEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog())

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "MCP Kubernetes Server is Running"})
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/pods", s.restTool(ToolListPods, "namespace"))
		v1.GET("/namespaces", s.restTool(ToolListNamespaces))
		v1.GET("/services", s.restTool(ToolListServices, "namespace"))
		v1.GET("/deployments", s.restTool(ToolListDeployments, "namespace"))
		v1.GET("/pod_logs", s.restTool(ToolPodLogs, "name", "namespace", "tail_lines"))
		v1.POST("/analyze_namespace", s.restTool(ToolAnalyzeNamespace, "namespace"))
	}
	return engine
}

// restTool dispatches name with the listed query parameters as arguments.
// Tool failures are part of the result text, so the reply is always 200
// unless the arguments were rejected.
func (s *Server) restTool(name string, params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		args := make(map[string]any, len(params))
		for _, p := range params {
			if v, ok := c.GetQuery(p); ok {
				args[p] = v
			}
		}

		result := s.registry.Dispatch(c.Request.Context(), name, args)
		code := http.StatusOK
		if result.IsError() && isInvalidArgument(result.Err) {
			code = http.StatusBadRequest
		}
		c.JSON(code, restResponse{Tool: name, Status: result.Status.String(), Result: result.Text})
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
