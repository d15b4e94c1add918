package listener

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/snip/internal/client/client"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/dmitrijs2005/snip/internal/testutil"
	"github.com/dmitrijs2005/snip/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applyCall struct {
	user      string
	watermark int64
	payload   *wire.Payload
}

type fakeApplier struct {
	mu       sync.Mutex
	calls    []applyCall
	accepted int
	err      error
}

func (f *fakeApplier) Apply(_ context.Context, userID string, watermark int64, p *wire.Payload) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, applyCall{user: userID, watermark: watermark, payload: p})
	return f.accepted, f.err
}

func (f *fakeApplier) Calls() []applyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]applyCall(nil), f.calls...)
}

func tokenAuth(token string) (string, error) {
	if token == "good" {
		return "alice", nil
	}
	return "", errors.New("bad token")
}

// startServer runs a Server on a loopback port until the test ends.
func startServer(t *testing.T, a Applier, opts ...Option) (string, testutil.Cert) {
	t.Helper()
	cert := testutil.SelfSignedCert(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("", &tls.Config{Certificates: []tls.Certificate{cert.TLS}}, a, tokenAuth, logging.Nop(), opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return ln.Addr().String(), cert
}

func push(t *testing.T, addr string, cert testutil.Cert, token string, since int64, p *wire.Payload) (int, error) {
	t.Helper()
	caFile, _ := cert.WriteFiles(t, t.TempDir())
	c, err := client.NewTLSClient(client.Options{Addr: addr, Token: token, CAFile: caFile, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c.Push(context.Background(), since, p)
}

func TestServer_AcceptsPush(t *testing.T) {
	a := &fakeApplier{accepted: 2}
	addr, cert := startServer(t, a)

	p := &wire.Payload{
		Snippets: []wire.SnippetRow{{ID: 1, Name: "n", Content: "c", LastUpdated: 9}},
		Tags:     []wire.TagRow{{ID: 1, Name: "go", LastUpdated: 9}},
	}
	n, err := push(t, addr, cert, "good", 4, p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	calls := a.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "alice", calls[0].user)
	assert.Equal(t, int64(4), calls[0].watermark)
	assert.Equal(t, p, calls[0].payload)
}

func TestServer_RejectsBadToken(t *testing.T) {
	a := &fakeApplier{}
	addr, cert := startServer(t, a)

	_, err := push(t, addr, cert, "forged", 0, &wire.Payload{Tags: []wire.TagRow{{ID: 1}}})
	require.ErrorIs(t, err, common.RemoteRejected)
	assert.Contains(t, err.Error(), "unauthorized")
	assert.Empty(t, a.Calls())
}

func TestServer_ApplyFailureIsRejection(t *testing.T) {
	addr, cert := startServer(t, &fakeApplier{err: errors.New("db down")})

	_, err := push(t, addr, cert, "good", 0, &wire.Payload{Tags: []wire.TagRow{{ID: 1}}})
	require.ErrorIs(t, err, common.RemoteRejected)
	assert.NotContains(t, err.Error(), "db down")
}

func rawExchange(t *testing.T, addr string, cert testutil.Cert, send func(conn net.Conn)) wire.Response {
	t.Helper()
	pool := testutil.CertPool(t, cert)
	conn, err := tls.Dial("tcp", addr, &tls.Config{RootCAs: pool, ServerName: "127.0.0.1"})
	require.NoError(t, err)
	defer conn.Close()

	send(conn)
	resp, err := wire.ReadResponse(bufio.NewReader(conn))
	require.NoError(t, err)
	return resp
}

func TestServer_PayloadTooLarge(t *testing.T) {
	a := &fakeApplier{}
	addr, cert := startServer(t, a, WithMaxPayload(8))

	resp := rawExchange(t, addr, cert, func(conn net.Conn) {
		require.NoError(t, wire.WriteFrame(conn, wire.Header{Token: "good"}, []byte(`{"snippets":[]}`)))
	})
	assert.Equal(t, "payload too large", resp.Reason())
	assert.Empty(t, a.Calls())
}

func TestServer_MalformedPayload(t *testing.T) {
	addr, cert := startServer(t, &fakeApplier{})

	resp := rawExchange(t, addr, cert, func(conn net.Conn) {
		require.NoError(t, wire.WriteFrame(conn, wire.Header{Token: "good", Watermark: 1}, []byte(`not json`)))
	})
	assert.True(t, resp.Rejected())
	assert.Equal(t, "malformed payload", resp.Reason())
}

func TestServer_MalformedHeader(t *testing.T) {
	addr, cert := startServer(t, &fakeApplier{})

	resp := rawExchange(t, addr, cert, func(conn net.Conn) {
		_, err := conn.Write([]byte("good\nnot-a-number\n0\n"))
		require.NoError(t, err)
	})
	assert.Equal(t, "malformed request", resp.Reason())
}

func TestServer_TimesOutIdleConnection(t *testing.T) {
	addr, cert := startServer(t, &fakeApplier{}, WithTimeout(200*time.Millisecond))

	resp := rawExchange(t, addr, cert, func(net.Conn) {})
	assert.Equal(t, "malformed request", resp.Reason())
}

func TestServer_StopsOnCancel(t *testing.T) {
	cert := testutil.SelfSignedCert(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("", &tls.Config{Certificates: []tls.Certificate{cert.TLS}}, &fakeApplier{}, tokenAuth, logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_, err = net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	assert.Error(t, err)
}

type blockingApplier struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (b *blockingApplier) Apply(ctx context.Context, _ string, _ int64, p *wire.Payload) (int, error) {
	close(b.started)
	<-b.release
	b.ctxErr <- ctx.Err()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.Len(), nil
}

func TestServer_DrainsInFlightPushOnCancel(t *testing.T) {
	cert := testutil.SelfSignedCert(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	a := &blockingApplier{started: make(chan struct{}), release: make(chan struct{}), ctxErr: make(chan error, 1)}
	s := NewServer("", &tls.Config{Certificates: []tls.Certificate{cert.TLS}}, a, tokenAuth, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	type result struct {
		n   int
		err error
	}
	caFile, _ := cert.WriteFiles(t, t.TempDir())
	c, err := client.NewTLSClient(client.Options{Addr: ln.Addr().String(), Token: "good", CAFile: caFile, Timeout: 5 * time.Second})
	require.NoError(t, err)

	pushed := make(chan result, 1)
	go func() {
		n, err := c.Push(context.Background(), 0, &wire.Payload{Tags: []wire.TagRow{{ID: 1, LastUpdated: 1}}})
		pushed <- result{n, err}
	}()

	select {
	case <-a.started:
	case <-time.After(5 * time.Second):
		t.Fatal("push never reached the applier")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("Serve returned before the in-flight push finished")
	case <-time.After(100 * time.Millisecond):
	}
	close(a.release)

	res := <-pushed
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.n)
	assert.NoError(t, <-a.ctxErr, "handler context is not cancelled with the listener")

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the drain")
	}
}

func TestLoadTLSConfig(t *testing.T) {
	cert := testutil.SelfSignedCert(t)
	certFile, keyFile := cert.WriteFiles(t, t.TempDir())

	conf, err := LoadTLSConfig(certFile, keyFile)
	require.NoError(t, err)
	assert.Len(t, conf.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), conf.MinVersion)

	_, err = LoadTLSConfig(certFile, "missing.pem")
	assert.Error(t, err)
}
