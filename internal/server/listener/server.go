// Package listener runs snipd's TLS sync endpoint. Each connection carries
// exactly one frame and gets exactly one JSON response line.
package listener

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/dmitrijs2005/snip/internal/wire"
)

const DefaultTimeout = 60 * time.Second

// Applier merges one pushed change set for a user.
type Applier interface {
	Apply(ctx context.Context, userID string, watermark int64, p *wire.Payload) (int, error)
}

// Authenticator maps a bearer token to a user id.
type Authenticator func(token string) (string, error)

type Server struct {
	address    string
	tlsConfig  *tls.Config
	applier    Applier
	auth       Authenticator
	timeout    time.Duration
	maxPayload int
	logger     logging.Logger

	wg sync.WaitGroup
}

type Option func(*Server)

func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMaxPayload(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPayload = n
		}
	}
}

func NewServer(address string, tlsConfig *tls.Config, applier Applier, auth Authenticator, logger logging.Logger, opts ...Option) *Server {
	s := &Server{
		address:    address,
		tlsConfig:  tlsConfig,
		applier:    applier,
		auth:       auth,
		timeout:    DefaultTimeout,
		maxPayload: wire.DefaultMaxPayload,
		logger:     logger.With("module", "listener"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadTLSConfig reads a PEM certificate/key pair.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load tls key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, wrapping them in TLS. On cancellation it
// stops accepting and waits for in-flight connections to finish. Handlers
// are not cancelled with ctx; the per-connection deadlines bound them.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ln = tls.NewListener(ln, s.tlsConfig)
	connCtx := context.WithoutCancel(ctx)

	stop := context.AfterFunc(ctx, func() {
		s.logger.Info(ctx, "Stopping sync listener...")
		_ = ln.Close()
	})
	defer stop()

	s.logger.Info(ctx, "Starting sync listener", "address", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(connCtx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := s.logger.With("remote", conn.RemoteAddr().String())
	_ = conn.SetReadDeadline(time.Now().Add(s.timeout))
	resp := s.process(ctx, log, bufio.NewReader(conn))

	_ = conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if err := wire.WriteResponse(conn, resp); err != nil {
		log.Warn(ctx, "write response failed", "error", err)
	}
}

func (s *Server) process(ctx context.Context, log logging.Logger, r *bufio.Reader) wire.Response {
	hdr, body, err := wire.ReadFrame(r, s.maxPayload)
	if err != nil {
		log.Warn(ctx, "bad frame", "error", err)
		if errors.Is(err, wire.ErrPayloadTooLarge) {
			return wire.Reject("payload too large")
		}
		return wire.Reject("malformed request")
	}

	userID, err := s.auth(hdr.Token)
	if err != nil {
		log.Warn(ctx, "authentication failed", "error", err)
		return wire.Reject("unauthorized")
	}
	log = log.With("user", userID)

	p, err := wire.DecodePayload(body)
	if err != nil {
		log.Warn(ctx, "bad payload", "error", err)
		return wire.Reject("malformed payload")
	}

	n, err := s.applier.Apply(ctx, userID, hdr.Watermark, p)
	if err != nil {
		log.Error(ctx, "push failed", "error", err)
		return wire.Reject("push failed")
	}

	log.Debug(ctx, "push acknowledged", "rows", p.Len(), "accepted", n)
	return wire.Response{Status: "ok", Accepted: n}
}
