package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const defaultBuffer = 256

// KafkaNotifier hands events to a single background goroutine that publishes
// them through the producer. A full buffer drops the event.
type KafkaNotifier struct {
	producer interfaces.ProducerHandler
	queue    chan dto.NotificationEvent

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	done      chan struct{}
}

func NewKafkaNotifier(producer interfaces.ProducerHandler, buffer int) *KafkaNotifier {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &KafkaNotifier{
		producer: producer,
		queue:    make(chan dto.NotificationEvent, buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the publishing goroutine. It is safe to call more than once.
func (n *KafkaNotifier) Start() {
	n.startOnce.Do(func() {
		go n.run()
	})
}

func (n *KafkaNotifier) run() {
	defer close(n.done)
	for event := range n.queue {
		n.publish(event)
	}
}

func (n *KafkaNotifier) publish(event dto.NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("notification marshal error: %v", err)
		metrics.RecordNotification("failed")
		return
	}
	if err := n.producer.PublishMessage(context.Background(), []byte(event.Type), payload); err != nil {
		log.WithFields(log.Fields{"type": event.Type, "to": event.To}).
			Warnf("notification publish failed: %v", err)
		metrics.RecordNotification("failed")
		return
	}
	metrics.RecordNotification("published")
}

func (n *KafkaNotifier) Notify(_ context.Context, event dto.NotificationEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		metrics.RecordNotification("dropped")
		return
	}
	select {
	case n.queue <- event:
	default:
		log.WithField("type", event.Type).Warn("notification buffer full - event dropped")
		metrics.RecordNotification("dropped")
	}
}

// Close stops accepting events and waits for queued ones to be published or
// for ctx to expire.
func (n *KafkaNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	n.Start()
	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogNotifier is used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event dto.NotificationEvent) {
	log.WithFields(log.Fields{"type": event.Type, "to": event.To}).Info("notification (no broker configured)")
	metrics.RecordNotification("dropped")
}
