package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthday-bot/internal/config"
	"github.com/tartampluch/birthday-bot/internal/engine"
	"github.com/tartampluch/birthday-bot/internal/metrics"
)

// Checker is the part of the orchestration routine the HTTP surface needs.
type Checker interface {
	RunCheck(ctx context.Context, trigger string) engine.CheckStats
	Count() int
}

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// BotServer exposes the manual trigger, the status page, the calendar feed
// and the metrics endpoint.
type BotServer struct {
	// cache uses atomic.Pointer for lock-free reads.
	// The feed is read by calendar clients far more often than it is
	// rebuilt (once per check).
	cache   atomic.Pointer[cacheItem]
	checker Checker

	// baseCtx parents manual checks; it is replaced by Start.
	baseCtx context.Context

	// passes tracks manual checks still running so Start can wait for them.
	passes sync.WaitGroup

	Addr string
	Port string
}

// NewBotServer creates a new instance of the server.
func NewBotServer(addr, port string, checker Checker) *BotServer {
	return &BotServer{
		checker: checker,
		baseCtx: context.Background(),
		Addr:    addr,
		Port:    port,
	}
}

// Handler returns the routing table of the bot.
func (s *BotServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteCheckNow, s.handleCheckNow)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)
	mux.Handle(config.RouteMetrics, metrics.MetricsHandler())
	mux.HandleFunc(config.RouteRoot, s.handleStatus)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
// On shutdown it waits for manual checks that are still in flight.
func (s *BotServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}
	s.baseCtx = ctx

	srv := &http.Server{
		Addr:         s.Addr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		s.passes.Wait()
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *BotServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Wait blocks until every manual check started so far has finished.
func (s *BotServer) Wait() {
	s.passes.Wait()
}

// handleCheckNow starts one check in the background and acknowledges at once.
// The response never reflects the outcome of the check.
func (s *BotServer) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	slog.Info(config.MsgManualTrigger, config.LogKeyComponent, config.CompServer)

	// Parented on the server lifetime, not the request: the batch outlives the
	// response, and shutdown only shortens the pauses between sends.
	ctx := s.baseCtx
	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		s.checker.RunCheck(ctx, config.TriggerManual)
	}()

	writeText(w, config.HTTPMsgCheckTriggered)
}

// handleStatus reports how many records are currently configured.
func (s *BotServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeText(w, fmt.Sprintf(config.HTTPMsgStatus, s.checker.Count()))
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *BotServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Load Data (Atomic / Lock-Free)
	item := s.cache.Load()

	// 3. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 4. Set Response Headers
	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 5. Check Conditional Headers (Browser Caching)
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// 6. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
