package server

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/version"
)

// NewRouter builds the gin engine with every API route and the static client.
func NewRouter(q Queries, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if opts.CORS {
		router.Use(corsMiddleware())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Current()})
	})

	api := router.Group("/api")
	{
		api.GET("/stats", withRange(func(c *gin.Context, rng core.DateRange) {
			c.JSON(http.StatusOK, q.Stats(c.Request.Context(), rng))
		}))
		api.GET("/agents/active", func(c *gin.Context) {
			c.JSON(http.StatusOK, nonNil(q.ActiveAgents(c.Request.Context())))
		})
		api.GET("/agents/usage", withRange(func(c *gin.Context, rng core.DateRange) {
			c.JSON(http.StatusOK, nonNil(q.AgentUsage(c.Request.Context(), rng)))
		}))
		api.GET("/sessions", withRange(func(c *gin.Context, rng core.DateRange) {
			c.JSON(http.StatusOK, nonNil(q.Sessions(c.Request.Context(), rng)))
		}))
		api.GET("/sessions/:id/messages", func(c *gin.Context) {
			id := strings.TrimSpace(c.Param("id"))
			if id == "" {
				writeJSONError(c, http.StatusBadRequest, "session id is required")
				return
			}
			c.JSON(http.StatusOK, nonNil(q.SessionDetail(c.Request.Context(), id)))
		})
		api.GET("/cost-history", func(c *gin.Context) {
			c.JSON(http.StatusOK, nonNil(q.CostHistory(c.Request.Context())))
		})
		api.GET("/models", func(c *gin.Context) {
			c.JSON(http.StatusOK, nonNil(q.ModelUsage(c.Request.Context())))
		})
		api.GET("/activity", func(c *gin.Context) {
			c.JSON(http.StatusOK, nonNil(q.HourlyActivity(c.Request.Context())))
		})
		api.GET("/backend", func(c *gin.Context) {
			c.JSON(http.StatusOK, q.Backend())
		})
		api.POST("/cache/invalidate", func(c *gin.Context) {
			q.InvalidateCache()
			c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
		})
	}

	router.NoRoute(staticHandler(opts.DistDir))
	return router
}

// withRange parses the optional ?range= query parameter. An empty value
// means all; anything unknown is rejected.
func withRange(h func(c *gin.Context, rng core.DateRange)) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Query("range"))
		rng, ok := core.ParseDateRange(raw)
		if !ok {
			writeJSONError(c, http.StatusBadRequest, fmt.Sprintf("invalid range %q: want today, week, month or all", raw))
			return
		}
		h(c, rng)
	}
}

// nonNil keeps empty listings encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSONError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			warnf("request", "method=%s path=%s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		infof("request", "method=%s path=%s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}

// staticHandler serves the built client from distDir. Paths with a file
// extension must exist; anything else falls back to index.html so client-side
// routes resolve.
func staticHandler(distDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if strings.HasPrefix(reqPath, "/api/") || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			writeJSONError(c, http.StatusNotFound, "not found")
			return
		}
		if distDir == "" {
			writeJSONError(c, http.StatusNotFound, "client not built")
			return
		}

		clean := path.Clean("/" + reqPath)
		if path.Ext(clean) != "" {
			file := filepath.Join(distDir, filepath.FromSlash(clean))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
			writeJSONError(c, http.StatusNotFound, "not found")
			return
		}

		index := filepath.Join(distDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			writeJSONError(c, http.StatusNotFound, "client not built")
			return
		}
		c.File(index)
	}
}
