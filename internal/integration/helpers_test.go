//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the test and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(stopCtx); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

// loadMockData reads the climate reading fixture shared with riskctl.
func loadMockData(t *testing.T) []domain.ClimateReading {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "climate_readings.json"))
	require.NoError(t, err, "read fixture")

	var readings []domain.ClimateReading
	require.NoError(t, json.Unmarshal(data, &readings), "decode fixture")
	require.NotEmpty(t, readings)
	return readings
}

var trainedService = sync.OnceValues(func() (*risk.Service, error) {
	cfg := model.DefaultConfig()
	cfg.Samples = 2000
	cfg.MaxIterations = 150
	svc := risk.NewService(model.NewRegistry(cfg, discardLogger()), observability.NewMetricsForTesting(), discardLogger())
	_, err := svc.Train()
	return svc, err
})

// newService returns a risk service backed by a small trained model.
func newService(t *testing.T) *risk.Service {
	t.Helper()
	svc, err := trainedService()
	require.NoError(t, err, "train model")
	return svc
}
