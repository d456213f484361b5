package kafka

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing_NoBrokers(t *testing.T) {
	assert.Error(t, Ping(context.Background(), Config{}))
}

func TestPing_Unreachable(t *testing.T) {
	// Grab a free port and release it so nothing is listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = Ping(ctx, Config{Brokers: []string{addr}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestPing_BadSASL(t *testing.T) {
	err := Ping(context.Background(), Config{Brokers: []string{"localhost:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported SASL mechanism")
}
