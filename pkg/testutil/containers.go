package testutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	kafkaImage = "confluentinc/confluent-local:7.6.1"
	redisImage = "redis:7-alpine"

	terminateTimeout = 10 * time.Second
)

// KafkaContainer is a single-node broker for settlement publishing tests.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts the broker and waits until its first listener
// accepts TCP connections. Defer Cleanup(t) on the result.
func NewKafkaContainer(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()

	c, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("cobranca-test"))
	if err != nil {
		t.Fatalf("start kafka container: %v", err)
	}
	kc := &KafkaContainer{Container: c}

	kc.Brokers, err = c.Brokers(ctx)
	if err != nil || len(kc.Brokers) == 0 {
		kc.Cleanup(t)
		t.Fatalf("kafka brokers unavailable: %v", err)
	}
	waitForTCP(ctx, t, kc.Brokers[0])
	return kc
}

func (kc *KafkaContainer) Cleanup(t *testing.T) {
	t.Helper()
	if kc.Container != nil {
		terminate(t, "kafka", kc.Container)
	}
}

// RedisContainer backs the shared OAuth token cache tests.
type RedisContainer struct {
	Container testcontainers.Container
	Addr      string
}

// NewRedisContainer starts Redis. Defer Cleanup(t) on the result.
func NewRedisContainer(ctx context.Context, t *testing.T) *RedisContainer {
	t.Helper()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	rc := &RedisContainer{Container: c}

	rc.Addr, err = c.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		rc.Cleanup(t)
		t.Fatalf("redis endpoint: %v", err)
	}
	return rc
}

func (rc *RedisContainer) Cleanup(t *testing.T) {
	t.Helper()
	if rc.Container != nil {
		terminate(t, "redis", rc.Container)
	}
}

func terminate(t *testing.T, name string, c testcontainers.Container) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()
	if err := c.Terminate(ctx); err != nil {
		t.Logf("warning: terminate %s container: %v", name, err)
	}
}

func waitForTCP(ctx context.Context, t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			_ = conn.Close()
			return
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			t.Fatalf("%s not reachable: %v", addr, err)
		}
		time.Sleep(250 * time.Millisecond)
	}
}
