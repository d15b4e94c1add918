package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/dmitrijs2005/snip/internal/wire"
)

const DefaultTimeout = common.DefaultSyncTimeoutSeconds * time.Second

// Options configures a TLSClient.
type Options struct {
	Addr    string
	Token   string
	Timeout time.Duration

	// CAFile, when set, replaces the system roots with the certificates in
	// the PEM file, for peers with self-signed certificates.
	CAFile string
	// InsecureSkipVerify disables certificate verification entirely.
	InsecureSkipVerify bool

	OnState StateFunc
	Logger  logging.Logger
}

type TLSClient struct {
	addr    string
	token   string
	timeout time.Duration
	tlsConf *tls.Config
	onState StateFunc
	logger  logging.Logger
}

func NewTLSClient(opts Options) (*TLSClient, error) {
	if opts.Addr == "" {
		return nil, ErrNoAddress
	}
	if opts.Token == "" {
		return nil, ErrNoToken
	}

	host, _, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("sync address %q: %w", opts.Addr, err)
	}

	conf := &tls.Config{
		ServerName:         host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.InsecureSkipVerify,
	}
	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%s: %w", opts.CAFile, ErrBadCAFile)
		}
		conf.RootCAs = pool
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &TLSClient{
		addr:    opts.Addr,
		token:   opts.Token,
		timeout: timeout,
		tlsConf: conf,
		onState: opts.OnState,
		logger:  logger.With("module", "sync-client"),
	}, nil
}

func (c *TLSClient) transition(ctx context.Context, s State) {
	c.logger.Debug(ctx, "sync state", "state", s.String())
	if c.onState != nil {
		c.onState(s)
	}
}

// Push encodes payload, sends it as a single frame and waits for the peer's
// answer. The connection is closed before Push returns.
func (c *TLSClient) Push(ctx context.Context, since int64, payload *wire.Payload) (accepted int, err error) {
	defer func() {
		if err != nil {
			c.transition(ctx, Failed)
		}
	}()

	body, err := wire.EncodePayload(payload)
	if err != nil {
		return 0, common.E(common.TransportFailure, "encode change set", err)
	}

	c.transition(ctx, Connecting)
	dialer := &net.Dialer{Timeout: c.timeout}
	raw, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return 0, common.E(common.TransportFailure, "connect "+c.addr, err)
	}
	defer raw.Close()

	// Cancelling ctx aborts any blocked read or write.
	stop := context.AfterFunc(ctx, func() {
		_ = raw.SetDeadline(time.Now())
	})
	defer stop()

	c.transition(ctx, Handshaking)
	conn := tls.Client(raw, c.tlsConf)
	hsCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err = conn.HandshakeContext(hsCtx)
	cancel()
	if err != nil {
		return 0, common.E(common.TransportFailure, "tls handshake", err)
	}

	c.transition(ctx, Sending)
	if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, common.E(common.TransportFailure, "set write deadline", err)
	}
	if err := wire.WriteFrame(conn, wire.Header{Token: c.token, Watermark: since}, body); err != nil {
		return 0, common.E(common.TransportFailure, "send change set", err)
	}

	c.transition(ctx, AwaitingAck)
	if err := conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, common.E(common.TransportFailure, "set read deadline", err)
	}
	resp, err := wire.ReadResponse(bufio.NewReader(conn))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrUnacked
		}
		return 0, common.E(common.TransportFailure, "read acknowledgement", err)
	}
	if resp.Rejected() {
		var cause error
		if reason := resp.Reason(); reason != "" {
			cause = errors.New(reason)
		}
		return 0, common.E(common.RemoteRejected, "push", cause)
	}

	c.logger.Info(ctx, "change set pushed", "rows", payload.Len(), "accepted", resp.Accepted)
	return resp.Accepted, nil
}
