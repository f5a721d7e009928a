package journey

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Publisher forwards stored events downstream.
type Publisher interface {
	Publish(events []Event) error
}

type KafkaConfig struct {
	BootstrapServers string
	Topic            string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
}

// KafkaConfigFromEnv returns nil when KAFKA_BOOTSTRAP_SERVERS is unset.
func KafkaConfigFromEnv() *KafkaConfig {
	servers := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if servers == "" {
		return nil
	}
	cfg := &KafkaConfig{
		BootstrapServers: servers,
		Topic:            os.Getenv("KAFKA_TOPIC"),
		SecurityProtocol: os.Getenv("KAFKA_SECURITY_PROTOCOL"),
		SASLMechanism:    os.Getenv("KAFKA_SASL_MECHANISM"),
		SASLUsername:     os.Getenv("KAFKA_SASL_USERNAME"),
		SASLPassword:     os.Getenv("KAFKA_SASL_PASSWORD"),
	}
	if cfg.Topic == "" {
		cfg.Topic = "console.journey-events"
	}
	if cfg.SecurityProtocol == "" {
		cfg.SecurityProtocol = "plaintext"
	}
	return cfg
}

// KafkaForwarder produces one message per event, keyed by session id so a
// visitor's events stay ordered within a partition.
type KafkaForwarder struct {
	producer     *kafka.Producer
	topic        string
	deliveryChan chan kafka.Event
	done         chan struct{}
	wg           sync.WaitGroup

	sent   atomic.Int64
	acked  atomic.Int64
	failed atomic.Int64
}

func NewKafkaForwarder(cfg *KafkaConfig) (*KafkaForwarder, error) {
	conf := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"security.protocol":  cfg.SecurityProtocol,
		"compression.type":   "lz4",
		"acks":               "all",
		"linger.ms":          20,
		"enable.idempotence": true,
		"request.timeout.ms": 30000,
	}
	if cfg.SASLMechanism != "" {
		conf.SetKey("sasl.mechanism", cfg.SASLMechanism)
		conf.SetKey("sasl.username", cfg.SASLUsername)
		conf.SetKey("sasl.password", cfg.SASLPassword)
	}

	p, err := kafka.NewProducer(conf)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	f := &KafkaForwarder{
		producer:     p,
		topic:        cfg.Topic,
		deliveryChan: make(chan kafka.Event, 1000),
		done:         make(chan struct{}),
	}
	f.wg.Add(1)
	go f.handleDeliveryReports()

	log.Printf("[journey] kafka forwarding to %s on %s", cfg.Topic, cfg.BootstrapServers)
	return f, nil
}

func (f *KafkaForwarder) handleDeliveryReports() {
	defer f.wg.Done()
	for {
		select {
		case <-f.done:
			return
		case e := <-f.deliveryChan:
			m, ok := e.(*kafka.Message)
			if !ok {
				continue
			}
			if m.TopicPartition.Error != nil {
				f.failed.Add(1)
				log.Printf("[journey] delivery failed: %v", m.TopicPartition.Error)
				continue
			}
			f.acked.Add(1)
		}
	}
}

func (f *KafkaForwarder) Publish(events []Event) error {
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", ev.ID, err)
		}
		msg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &f.topic, Partition: kafka.PartitionAny},
			Key:            []byte(ev.SessionID),
			Value:          payload,
			Headers:        []kafka.Header{{Key: "event_name", Value: []byte(ev.Name)}},
		}
		if err := f.produce(msg); err != nil {
			f.failed.Add(1)
			return err
		}
		f.sent.Add(1)
	}
	return nil
}

// produce retries a full local queue with exponential backoff.
func (f *KafkaForwarder) produce(msg *kafka.Message) error {
	const maxRetries = 3
	backoff := 50 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		err := f.producer.Produce(msg, f.deliveryChan)
		if err == nil {
			return nil
		}
		lastErr = err
		if kerr, ok := err.(kafka.Error); ok && kerr.Code() != kafka.ErrQueueFull && !kerr.IsRetriable() {
			return fmt.Errorf("produce: %w", err)
		}
	}
	return fmt.Errorf("produce after %d retries: %w", maxRetries, lastErr)
}

// Close flushes queued messages and stops the delivery handler.
func (f *KafkaForwarder) Close() {
	if remaining := f.producer.Flush(10_000); remaining > 0 {
		log.Printf("[journey] %d messages still queued at shutdown", remaining)
	}
	close(f.done)
	f.wg.Wait()
	f.producer.Close()
	log.Printf("[journey] kafka closed: sent=%d acked=%d failed=%d", f.sent.Load(), f.acked.Load(), f.failed.Load())
}
