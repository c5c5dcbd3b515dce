package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Model training.
	TrainingSamples     int
	ModelSeed           uint64
	TestFraction        float64
	MaxIterations       int
	L2Penalty           float64
	TrainingParallelism int

	// Streaming pipeline.
	PipelineEnabled    bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	samples, err := parseInt("MODEL_TRAINING_SAMPLES", 8000, 100, 200000)
	if err != nil {
		return nil, err
	}
	maxIter, err := parseInt("MODEL_MAX_ITERATIONS", 300, 1, 100000)
	if err != nil {
		return nil, err
	}
	parallelism, err := parseInt("MODEL_TRAIN_PARALLELISM", 4, 1, 64)
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("MODEL_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid MODEL_SEED: must be a non-negative integer")
	}

	testFraction, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MODEL_TEST_FRACTION", "0.2"), 64)
	if err != nil || !(testFraction > 0 && testFraction < 1) {
		return nil, errors.New("invalid MODEL_TEST_FRACTION: must be between 0 and 1 exclusive")
	}

	l2, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MODEL_L2_PENALTY", "0.001"), 64)
	if err != nil || !(l2 >= 0) {
		return nil, errors.New("invalid MODEL_L2_PENALTY: must be a non-negative number")
	}

	pipelineEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("PIPELINE_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid PIPELINE_ENABLED: must be true or false")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TrainingSamples:     samples,
		ModelSeed:           seed,
		TestFraction:        testFraction,
		MaxIterations:       maxIter,
		L2Penalty:           l2,
		TrainingParallelism: parallelism,

		PipelineEnabled:    pipelineEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "climate-readings"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "disease-risk-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-risk-engine"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.PipelineEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when PIPELINE_ENABLED is true")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required when PIPELINE_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when PIPELINE_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, strconv.Itoa(def)))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
