package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Name string

	http            *http.Server
	shutdownTimeout time.Duration
	startTime       time.Time

	l zerolog.Logger
}

type Options struct {
	Name            string
	Addr            string
	Handler         http.Handler
	ShutdownTimeout time.Duration
}

func NewServer(opt Options) *Server {
	return &Server{
		Name: opt.Name,
		http: &http.Server{
			Addr:              opt.Addr,
			Handler:           opt.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: opt.ShutdownTimeout,
		l:               log.With().Str("server", opt.Name).Logger(),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", s.http.Addr)
	if err != nil {
		s.l.Err(err).Str("addr", s.http.Addr).Msg("failed to listen on port")
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done, then shuts down gracefully
// within the shutdown timeout.
//
// It returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.startTime = time.Now()
	s.http.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.l.Info().Str("addr", l.Addr().String()).Msg("server started")
		err := s.http.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx := context.WithoutCancel(ctx)
		if s.shutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.shutdownTimeout)
			defer cancel()
		}
		err := s.http.Shutdown(shutdownCtx)
		if err != nil {
			s.l.Err(err).Msg("failed to shutdown gracefully")
			return err
		}
		s.l.Info().Dur("uptime", time.Since(s.startTime)).Msg("server stopped")
		return nil
	})
	return g.Wait()
}
