package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	log "github.com/sirupsen/logrus"
)

// MessageReader is the part of *kafka.Reader the consumer loop needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	Reader      MessageReader
	Handler     interfaces.ConsumerHandler
	ServiceName string
	RetryDelay  time.Duration
}

func NewKafkaConsumer(broker, topic, groupID, username, password string, handler interfaces.ConsumerHandler) *KafkaConsumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{
			Username: username,
			Password: password,
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, //10MB
		Dialer:   dialer,
	})

	return &KafkaConsumer{
		Reader:      reader,
		Handler:     handler,
		ServiceName: "Bursary Notifier",
		RetryDelay:  2 * time.Second,
	}
}

// Listen reads until ctx is cancelled. Handler errors are logged and the
// message is committed anyway. Read errors pause the loop for RetryDelay.
func (kc *KafkaConsumer) Listen(ctx context.Context) error {
	defer func() {
		if err := kc.Reader.Close(); err != nil {
			log.Printf("[%s] close error: %v", kc.ServiceName, err)
		}
	}()

	for {
		msg, err := kc.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("[%s] read error: %v", kc.ServiceName, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(kc.RetryDelay):
			}
			continue
		}

		log.WithFields(log.Fields{
			"service":   kc.ServiceName,
			"key":       string(msg.Key),
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Debug("received message")

		if err := kc.Handler.HandleMessage(ctx, msg.Key, msg.Value); err != nil {
			log.Printf("[%s] handler error: %v", kc.ServiceName, err)
		}
	}
}
