package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/raven/internal/certs"
)

// Listener names used in logs and metrics.
const (
	ListenerHTTP    = "http"
	ListenerHTTPS   = "https"
	ListenerMetrics = "metrics"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	Host               string
	HTTPPort           int // 0 disables the redirect listener
	HTTPSPort          int
	MetricsAddr        string // empty disables the metrics listener
	ReadHeaderTimeout  time.Duration
	RenewCheckInterval time.Duration
	Site               Site
}

// Server runs the HTTPS site, the HTTP redirect and the metrics listener.
type Server struct {
	cfg     Config
	certs   *certs.Manager
	log     logrus.FieldLogger
	metrics *Metrics
}

// New returns a Server serving the certificates of manager.
func New(cfg Config, manager *certs.Manager, log logrus.FieldLogger) *Server {
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	s := &Server{cfg: cfg, certs: manager, log: log, metrics: NewMetrics()}
	s.metrics.SetCertificateExpiry(manager.NotAfter())
	return s
}

// Metrics returns the server collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Listeners holds the sockets a Server serves on. A nil HTTP or Metrics
// listener disables that listener.
type Listeners struct {
	HTTP    net.Listener
	HTTPS   net.Listener
	Metrics net.Listener
}

// Listen opens the configured sockets.
func (s *Server) Listen() (*Listeners, error) {
	var (
		ls  Listeners
		err error
	)
	closeAll := func() {
		for _, l := range []net.Listener{ls.HTTP, ls.HTTPS, ls.Metrics} {
			if l != nil {
				_ = l.Close()
			}
		}
	}

	if ls.HTTPS, err = net.Listen("tcp", s.addr(s.cfg.HTTPSPort)); err != nil {
		return nil, fmt.Errorf("listening on https port %d: %w", s.cfg.HTTPSPort, err)
	}
	if s.cfg.HTTPPort != 0 {
		if ls.HTTP, err = net.Listen("tcp", s.addr(s.cfg.HTTPPort)); err != nil {
			closeAll()
			return nil, fmt.Errorf("listening on http port %d: %w", s.cfg.HTTPPort, err)
		}
	}
	if s.cfg.MetricsAddr != "" {
		if ls.Metrics, err = net.Listen("tcp", s.cfg.MetricsAddr); err != nil {
			closeAll()
			return nil, fmt.Errorf("listening on metrics address %s: %w", s.cfg.MetricsAddr, err)
		}
	}
	return &ls, nil
}

func (s *Server) addr(port int) string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(port))
}

// Run opens the listeners and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ls, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ls)
}

// Serve serves on ls until ctx is cancelled, then shuts every listener
// down within ShutdownTimeout. Certificate renewal runs on a schedule for
// the lifetime of the call.
func (s *Server) Serve(ctx context.Context, ls *Listeners) error {
	scheduler, err := s.startRenewal()
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			s.log.WithError(err).Warn("stopping renewal scheduler")
		}
	}()

	servers := map[string]*http.Server{
		ListenerHTTPS: s.newHTTPServer(ListenerHTTPS, NewRouter(s.cfg.Site)),
	}
	servers[ListenerHTTPS].TLSConfig = &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: s.certs.GetCertificate,
	}
	if ls.HTTP != nil {
		servers[ListenerHTTP] = s.newHTTPServer(ListenerHTTP, RedirectHandler(s.cfg.HTTPSPort))
	}
	if ls.Metrics != nil {
		servers[ListenerMetrics] = &http.Server{
			Handler:           s.metrics.Handler(),
			ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	serve := func(name string, ln net.Listener, run func(net.Listener) error) {
		g.Go(func() error {
			s.log.WithFields(logrus.Fields{"listener": name, "addr": ln.Addr().String()}).Info("listening")
			if err := run(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s listener: %w", name, err)
			}
			return nil
		})
	}

	serve(ListenerHTTPS, ls.HTTPS, func(ln net.Listener) error {
		return servers[ListenerHTTPS].ServeTLS(ln, "", "")
	})
	if srv, ok := servers[ListenerHTTP]; ok {
		serve(ListenerHTTP, ls.HTTP, srv.Serve)
	}
	if srv, ok := servers[ListenerMetrics]; ok {
		serve(ListenerMetrics, ls.Metrics, srv.Serve)
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		var errs []error
		for name, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s listener: %w", name, err))
			}
		}
		s.log.Info("server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

func (s *Server) newHTTPServer(listener string, h http.Handler) *http.Server {
	return &http.Server{
		Handler:           withAccessLog(listener, h, s.log, s.metrics),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
}

// startRenewal schedules the certificate renewal check.
func (s *Server) startRenewal() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create renewal scheduler: %w", err)
	}
	interval := s.cfg.RenewCheckInterval
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.renewCertificate),
		gocron.WithName("certificate-renewal"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule certificate renewal: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

func (s *Server) renewCertificate() {
	renewed, err := s.certs.Renew()
	if err != nil {
		s.log.WithError(err).Error("certificate renewal failed")
		return
	}
	if renewed {
		s.metrics.SetCertificateExpiry(s.certs.NotAfter())
	}
}
