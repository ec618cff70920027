package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventTypeCheckedOut = "cart.checked_out"

type CheckoutEvent struct {
	Profile      string                     `json:"profile"`
	Lines        []persistence.CheckoutLine `json:"lines"`
	GrandTotal   string                     `json:"grandTotal"`
	CheckedOutAt time.Time                  `json:"checkedOutAt"`
}

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// CheckoutNotifier announces checkouts on a topic. It is a cart observer
// and ignores every other event; publish failures are only logged.
type CheckoutNotifier struct {
	writer  MessageWriter
	profile string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewCheckoutNotifier(writer MessageWriter, profile string, logger *zap.Logger) *CheckoutNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutNotifier{
		writer:  writer,
		profile: profile,
		timeout: 5 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

func (n *CheckoutNotifier) CartChanged(ctx context.Context, ev cart.Event) {
	if ev.Kind != cart.EventCheckout {
		return
	}

	payload, err := json.Marshal(CheckoutEvent{
		Profile:      n.profile,
		Lines:        persistence.CheckoutLines(ev.Lines),
		GrandTotal:   domain.FormatMoney(domain.Cart{Lines: ev.Lines}.Total()),
		CheckedOutAt: n.now().UTC(),
	})
	if err != nil {
		n.logger.Error("marshal checkout event failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(n.profile),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeCheckedOut)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.logger.Error("publish checkout event failed", zap.String("profile", n.profile), zap.Error(err))
		return
	}
	n.logger.Info("checkout event published", zap.String("profile", n.profile), zap.Int("lines", len(ev.Lines)))
}

func (n *CheckoutNotifier) Close() error {
	return n.writer.Close()
}
