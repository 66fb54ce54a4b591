// Package server exposes the dashboard façade as a JSON API and hosts the
// built single-page client.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
)

// Queries is the façade surface the API serves.
type Queries interface {
	Stats(ctx context.Context, rng core.DateRange) core.DashboardStats
	ActiveAgents(ctx context.Context) []core.AgentActivity
	Sessions(ctx context.Context, rng core.DateRange) []core.Session
	SessionDetail(ctx context.Context, sessionID string) []core.SessionMessage
	AgentUsage(ctx context.Context, rng core.DateRange) []core.AgentUsage
	CostHistory(ctx context.Context) []core.CostHistoryEntry
	ModelUsage(ctx context.Context) []core.ModelUsage
	HourlyActivity(ctx context.Context) []core.HourlyActivity
	Backend() detect.Descriptor
	InvalidateCache()
}

type Options struct {
	Host    string
	Port    int
	DistDir string
	CORS    bool
	// Out receives the startup banner; nil discards it.
	Out io.Writer
}

func (o Options) addr() string {
	host := o.Host
	if strings.TrimSpace(host) == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(o.Port))
}

// Start serves the API until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, q Queries, opts Options) error {
	if q == nil {
		return fmt.Errorf("server: queries are required")
	}
	if opts.Port <= 0 {
		return fmt.Errorf("server: invalid port %d", opts.Port)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              opts.addr(),
		Handler:           NewRouter(q, opts),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", srv.Addr, err)
	}

	go func() {
		<-ctx.Done()
		infof("shutdown", "reason=context_done")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "OhMyDashboard running at http://%s\n", ln.Addr().String())
	}
	infof("listening", "addr=%s dist=%s", ln.Addr().String(), opts.DistDir)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func infof(event, format string, args ...any) {
	log.Printf("server level=info event=%s "+format, append([]any{event}, args...)...)
}

func warnf(event, format string, args ...any) {
	log.Printf("server level=warn event=%s "+format, append([]any{event}, args...)...)
}
