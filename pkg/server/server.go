package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/strand-dev/strand/internal/errors"
)

// Task is a long-lived background job started when the server enters
// Listening and cancelled (via ctx) when it enters ShuttingDown.
type Task func(ctx context.Context) error

// Server is a multi-domain HTTP server built directly on stream sockets.
// It owns the listener, the per-connection goroutines, the background
// task registry, and the startup/shutdown state machine.
type Server struct {
	config *Config
	logger *slog.Logger

	router Router

	tasks    []Task
	taskWg   sync.WaitGroup
	taskStop context.CancelFunc

	listenerMu sync.Mutex
	listener   net.Listener
	unixPath   string
	acceptDone chan struct{}

	// In-flight connection bookkeeping. The map tracks open sockets so
	// shutdown can force-close stragglers; the semaphore bounds
	// concurrently handled connections at MaxConns.
	conns *xsync.MapOf[net.Conn, *Connection]
	wg    sync.WaitGroup
	sem   chan struct{}

	state        atomic.Int32
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	restart      atomic.Bool
	exceptions   atomic.Int64
}

// New creates a Server with the given configuration, filling defaults
// for unset fields.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if config.Name == "" {
			config.Name = defaults.Name
		}
		if config.MaxConns <= 0 {
			config.MaxConns = defaults.MaxConns
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "server", "name", config.Name)
	}

	return &Server{
		config:     config,
		logger:     logger,
		conns:      xsync.NewMapOf[net.Conn, *Connection](),
		sem:        make(chan struct{}, config.MaxConns),
		shutdownCh: make(chan struct{}),
	}
}

// SetRouter sets the router consulted for every dispatched request.
// Must be called before Run; the router is read-only while serving.
func (s *Server) SetRouter(r Router) {
	s.router = r
}

// Router returns the current router, or nil if none is set.
func (s *Server) Router() Router {
	return s.router
}

// AddTask registers a background task to be started at Listening entry.
// Must be called before Run.
func (s *Server) AddTask(t Task) {
	s.tasks = append(s.tasks, t)
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Exceptions returns the number of handler panics caught so far.
func (s *Server) Exceptions() int64 {
	return s.exceptions.Load()
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Addr returns the bound listener address, or nil before the listener
// is up.
func (s *Server) Addr() net.Addr {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown requests a graceful shutdown. Safe to call from any
// goroutine; calls after the first are no-ops.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// Restart requests a shutdown followed by a restart via RestartFunc.
func (s *Server) Restart() {
	s.restart.Store(true)
	s.Shutdown()
}

// Run binds addr and serves until a shutdown is requested by signal,
// context cancellation, or Shutdown. addr is either "host:port" for a
// TCP socket or a filesystem path for a Unix-domain socket.
//
// Run blocks until the server reaches Stopped and returns the error
// that aborted startup, if any.
func (s *Server) Run(ctx context.Context, addr string) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateListening)) {
		return errors.New("E303").WithDetailf("state %s", s.State())
	}

	s.logger.Info("starting up", "name", s.config.Name)

	network, err := resolveNetwork(addr)
	if err != nil {
		s.state.Store(int32(StateStopped))
		return err
	}
	if network == "unix" {
		s.unixPath = addr
		if _, err := os.Stat(addr); err == nil {
			_ = os.Remove(addr)
		}
	}

	listener, err := net.Listen(network, addr)
	if err != nil {
		s.state.Store(int32(StateStopped))
		return errors.New("E302").WithDetailf("listen %s %q", network, addr).Wrap(err)
	}
	s.listenerMu.Lock()
	s.listener = listener
	s.listenerMu.Unlock()
	if network == "unix" {
		_ = os.Chmod(addr, 0o777)
	}
	s.logger.Info("listening", "network", network, "addr", addr)

	// Signal plumbing. SIGUSR1 requests a restart when enabled.
	sigs := []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}
	if s.config.EnableRestart {
		sigs = append(sigs, syscall.SIGUSR1)
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)
	defer signal.Stop(sigCh)

	handlerCtx, handlerCancel := context.WithCancel(context.Background())
	defer handlerCancel()
	taskCtx, taskCancel := context.WithCancel(context.Background())
	s.taskStop = taskCancel
	defer taskCancel()

	s.startTasks(taskCtx)

	if s.config.BeforeServing != nil {
		if err := s.config.BeforeServing(ctx); err != nil {
			s.logger.Error("before-serving hook failed", "error", err)
			s.teardown(handlerCancel)
			return err
		}
	}

	s.acceptDone = make(chan struct{})
	go func() {
		defer close(s.acceptDone)
		s.acceptLoop(handlerCtx)
	}()

	ctxDone := ctx.Done()
	for {
		select {
		case sig := <-sigCh:
			s.logger.Warn("received signal", "signal", sig.String())
			if sig == syscall.SIGUSR1 {
				s.restart.Store(true)
			}
			s.Shutdown()
		case <-ctxDone:
			ctxDone = nil // fire once
			s.Shutdown()
		case <-s.shutdownCh:
			s.teardown(handlerCancel)
			return s.maybeRestart()
		}
	}
}

// acceptLoop accepts connections until the listener closes, spawning
// one handler goroutine per accepted socket.
func (s *Server) acceptLoop(handlerCtx context.Context) {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if stderrors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-s.shutdownCh:
				return
			default:
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		// A saturated semaphore must not hold an accepted socket across
		// shutdown: a connection still waiting for a slot when shutdown
		// arrives is closed unserved.
		select {
		case s.sem <- struct{}{}:
		case <-s.shutdownCh:
			_ = nc.Close()
			return
		}
		s.wg.Add(1)
		conn := newConnection(nc, s.config.GzipLevel, s.logger)
		s.conns.Store(nc, conn)
		if s.config.OnConnOpen != nil {
			s.config.OnConnOpen()
		}
		go s.handle(handlerCtx, nc, conn)
	}
}

// handle owns one accepted socket end-to-end: parse, dispatch, respond,
// close. Panics are caught here so a broken handler never takes down
// the accept loop.
func (s *Server) handle(ctx context.Context, nc net.Conn, conn *Connection) {
	defer func() {
		if r := recover(); r != nil {
			s.exceptions.Add(1)
			if s.config.OnPanic != nil {
				s.config.OnPanic()
			}
			s.logger.Error("unhandled exception in handler", "panic", r)
		}
		conn.close()
		s.conns.Delete(nc)
		if s.config.OnConnClose != nil {
			s.config.OnConnClose()
		}
		<-s.sem
		s.wg.Done()
	}()

	parseStart := time.Now()
	if err := conn.parse(); err != nil {
		// Malformed request: abort without a response.
		s.logger.Warn("request parse failed", "error", err)
		return
	}
	parseTime := time.Since(parseStart)

	host, ok := conn.Request.Header.Lookup("Host")
	if !ok {
		s.logger.Warn("connection missing Host header")
		return
	}

	handleStart := time.Now()
	status := s.dispatch(ctx, conn, host)
	handleTime := time.Since(handleStart)

	if s.config.Debug {
		s.logRequest(conn, status, parseTime, handleTime)
	}
}

// dispatch resolves the route and sends the response. Handler absence
// and the NotFound result both yield the fixed 404 response.
func (s *Server) dispatch(ctx context.Context, conn *Connection, host string) int {
	result := NotFound()
	if s.router != nil {
		if handler, ok := s.router.Resolve(host, conn.Request.Path, conn.Request.Method); ok {
			result = handler(ctx, conn)
		}
	}

	status := result.Status()
	if err := conn.Send(status, result.Bytes()); err != nil {
		s.logger.Error("response framing failed", "error", err)
	}
	return status
}

// logRequest logs one completed request at a level matching its status
// class, with parse and handle timings.
func (s *Server) logRequest(conn *Connection, status int, parseTime, handleTime time.Duration) {
	req := conn.Request
	attrs := []any{
		"method", req.Method,
		"status", status,
		"uri", req.Header.Get("Host") + req.Path,
		"parse", parseTime.String(),
		"handle", handleTime.String(),
	}
	switch {
	case status >= 500:
		s.logger.Error("request", attrs...)
	case status >= 400:
		s.logger.Warn("request", attrs...)
	default:
		s.logger.Info("request", attrs...)
	}
}

// startTasks launches the registered background tasks.
func (s *Server) startTasks(ctx context.Context) {
	if s.config.Debug {
		s.logger.Info("starting background tasks", "count", len(s.tasks))
	}
	for _, task := range s.tasks {
		t := task
		s.taskWg.Add(1)
		go func() {
			defer s.taskWg.Done()
			if err := t(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				s.logger.Error("background task failed", "error", err)
			}
		}()
	}
}

// teardown drives ShuttingDown → Stopped: stop accepting, cancel
// background tasks, await in-flight handlers up to the shutdown
// timeout, force-cancel stragglers, then run the after-serving hook.
func (s *Server) teardown(handlerCancel context.CancelFunc) {
	s.state.Store(int32(StateShuttingDown))

	s.listenerMu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.listenerMu.Unlock()

	// The accept loop must have exited before handlers are awaited, so
	// that every wg.Add happens before the wg.Wait below.
	if s.acceptDone != nil {
		<-s.acceptDone
	}

	s.logger.Info("cancelling background tasks")
	s.taskStop()
	s.taskWg.Wait()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.config.ShutdownTimeout):
		s.logger.Warn("timed out awaiting handlers, cancelling them")
		handlerCancel()
		s.conns.Range(func(nc net.Conn, _ *Connection) bool {
			_ = nc.Close()
			return true
		})
		<-done
	}

	if s.config.AfterServing != nil {
		if err := s.config.AfterServing(context.Background()); err != nil {
			s.logger.Error("after-serving hook failed", "error", err)
		}
	}

	if s.unixPath != "" {
		_ = os.Remove(s.unixPath)
	}

	s.state.Store(int32(StateStopped))
	s.logger.Info("shut down", "name", s.config.Name)
}

// maybeRestart hands the process to RestartFunc when a restart was
// requested, defaulting to re-exec of the current binary.
func (s *Server) maybeRestart() error {
	if !s.restart.Load() || !s.config.EnableRestart {
		return nil
	}
	s.logger.Info("restarting")
	restart := s.config.RestartFunc
	if restart == nil {
		restart = reexec
	}
	return restart()
}

// reexec replaces the process image with a fresh invocation of the
// current binary and arguments.
func reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}

// resolveNetwork classifies addr as a TCP host:port or a Unix socket
// path.
func resolveNetwork(addr string) (string, error) {
	if strings.Contains(addr, "/") {
		return "unix", nil
	}
	if strings.Contains(addr, ":") {
		return "tcp", nil
	}
	return "", errors.New("E302").WithDetailf("addr %q", addr)
}
