package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/snip/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l, closer := NewLogger(&config.Config{})
	assert.NotNil(t, l)
	assert.Nil(t, closer)

	path := filepath.Join(t.TempDir(), "snipd.log")
	l, closer = NewLogger(&config.Config{LogFile: path})
	require.NotNil(t, closer)
	l.Info(context.Background(), "hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}

func TestNewApp_MissingCertificate(t *testing.T) {
	dir := t.TempDir()
	c := &config.Config{
		TLSCertFile: filepath.Join(dir, "cert.pem"),
		TLSKeyFile:  filepath.Join(dir, "key.pem"),
	}

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tls key pair")
}
