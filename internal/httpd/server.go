package httpd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nyxlabs/userd/internal/service/user"
	"github.com/nyxlabs/userd/pkg/config"
)

// Server accepts TCP connections and drives the parse, route, handle,
// respond cycle for each request. One goroutine serves one connection;
// requests on a connection are processed strictly in arrival order.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	router  *router
	limiter RateLimiter

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

// NewServer assembles the server with its dependencies.
func NewServer(cfg config.Config, users user.Service, logger *slog.Logger, limiter RateLimiter) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		router:  newRouter(users),
		limiter: limiter,
	}
	if s.limiter == nil {
		s.limiter = NewMemoryRateLimiter()
	}
	s.initMetrics()
	return s
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// ListenAndServe accepts connections until ctx is cancelled, then
// closes the listener and waits for in-flight connections to drain.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
	wg.Wait()
	return nil
}

// serveConn handles one connection for its whole lifetime. The
// connection stays open across requests until the client asks for
// Connection: close, goes idle past the deadline, or sends bytes the
// parser cannot frame (answered with a best-effort 400, then closed).
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := remoteIP(conn)
	reader := bufio.NewReader(conn)
	limits := parserLimits{
		maxHeaderBytes: s.cfg.MaxHeaderBytes,
		maxBodyBytes:   s.cfg.MaxBodyBytes,
	}

	for {
		if ctx.Err() != nil {
			return
		}
		// The deadline covers both waiting for the next request and
		// reading it, so a stalled or silent peer cannot pin the
		// goroutine.
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		req, err := parseRequest(reader, limits)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return
			}
			s.logger.Warn("malformed request", "remote", remote, "error", err)
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			_ = writeError(conn, 400, true, "malformed request")
			return
		}

		closing := wantsClose(req)
		status := s.handleRequest(ctx, conn, req, remote, closing)
		if status == 0 || closing {
			return
		}
	}
}

// handleRequest dispatches one parsed request and writes its response.
// It returns the status written, or 0 when the response could not be
// delivered and the connection must be dropped.
func (s *Server) handleRequest(ctx context.Context, conn net.Conn, req *Request, remote string, closing bool) int {
	start := time.Now()
	requestID := uuid.NewString()

	status, payload, pattern := s.dispatch(ctx, req, remote)

	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := writeJSON(conn, status, closing, payload); err != nil {
		s.logger.Warn("response write failed", "remote", remote, "request_id", requestID, "error", err)
		return 0
	}

	duration := time.Since(start)
	s.recordRequestMetrics(req.Method, pattern, status, duration)
	logFn := s.logger.Info
	if status >= 500 {
		logFn = s.logger.Error
	} else if status >= 400 {
		logFn = s.logger.Warn
	}
	logFn("request handled",
		"request_id", requestID,
		"remote", remote,
		"method", req.Method,
		"path", req.Path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
	return status
}

// dispatch routes the request and runs its handler. A panic inside a
// handler becomes a 500 so the connection still gets a response.
func (s *Server) dispatch(ctx context.Context, req *Request, remote string) (status int, payload any, pattern string) {
	pattern = req.Path

	if decision := s.limiter.Allow("ip:"+remote, s.cfg.RateLimit, s.cfg.RateWindow); !decision.allowed {
		s.recordRateLimitHit(req.Path)
		return 429, errorBody("rate limit exceeded"), pattern
	}

	match, ok := s.router.match(req.Method, req.Path)
	if !ok {
		return 404, errorBody("route not found"), pattern
	}
	pattern = match.pattern

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("handler panicked", "method", req.Method, "path", req.Path, "panic", rec)
			status = 500
			payload = errorBody("internal server error")
		}
	}()
	status, payload = match.handler(ctx, req, match.params)
	return status, payload, pattern
}

func wantsClose(req *Request) bool {
	value, ok := req.Header("Connection")
	return ok && strings.EqualFold(strings.TrimSpace(value), "close")
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil || host == "" {
		return conn.RemoteAddr().String()
	}
	return host
}
