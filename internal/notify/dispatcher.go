package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/observability"
)

const defaultSendTimeout = 15 * time.Second

// Message is one rendered notification ready for delivery.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Transport delivers messages over one channel.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// RecordStore persists the dispatch audit trail.
type RecordStore interface {
	AppendNotification(ctx context.Context, rec domain.NotificationRecord) (domain.NotificationRecord, error)
}

// Result summarizes one dispatch fan-out.
type Result struct {
	Sent    int
	Failed  int
	Skipped int
}

// Dispatcher fans an alert out to matched subscribers across their enabled
// channels. One failing delivery never blocks the others; every attempt is
// recorded.
type Dispatcher struct {
	transports  map[domain.Channel]Transport
	records     RecordStore
	workers     int
	sendTimeout time.Duration

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDispatcher creates a dispatcher over the given per-channel transports.
// Channels without a transport are skipped at dispatch time.
func NewDispatcher(transports map[domain.Channel]Transport, records RecordStore, workers int,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		transports:  transports,
		records:     records,
		workers:     workers,
		sendTimeout: defaultSendTimeout,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
}

type delivery struct {
	sub     domain.Subscription
	channel domain.Channel
}

// Dispatch sends the alert to every subscriber over each of their enabled
// channels, with bounded parallelism. The returned counts cover one attempt
// per (subscriber, channel) pair.
func (d *Dispatcher) Dispatch(ctx context.Context, alert domain.Alert, subs []domain.Subscription) Result {
	var deliveries []delivery
	for _, sub := range subs {
		for _, ch := range sub.Channels() {
			deliveries = append(deliveries, delivery{sub: sub, channel: ch})
		}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
		sem    = make(chan struct{}, d.workers)
	)
	for _, dl := range deliveries {
		wg.Add(1)
		sem <- struct{}{}
		go func(dl delivery) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := d.deliver(ctx, alert, dl)
			mu.Lock()
			switch outcome {
			case domain.NotificationSent:
				result.Sent++
			case domain.NotificationFailed:
				result.Failed++
			default:
				result.Skipped++
			}
			mu.Unlock()
		}(dl)
	}
	wg.Wait()

	d.logger.Info("alert dispatch complete",
		"alert_id", alert.ID,
		"sent", result.Sent,
		"failed", result.Failed,
		"skipped", result.Skipped)
	return result
}

// deliver sends one message and records the attempt. A missing transport
// skips without a record; everything else is audited.
func (d *Dispatcher) deliver(ctx context.Context, alert domain.Alert, dl delivery) domain.NotificationStatus {
	transport, ok := d.transports[dl.channel]
	if !ok {
		d.logger.Debug("no transport for channel", "channel", dl.channel, "owner", dl.sub.Owner)
		return domain.NotificationPending
	}

	msg := renderFor(alert, dl)
	rec := domain.NotificationRecord{
		Owner:     dl.sub.Owner,
		AlertID:   alert.ID,
		Channel:   dl.channel,
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Body:      msg.Body,
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := transport.Send(sendCtx, msg); err != nil {
		d.logger.Warn("notification delivery failed",
			"alert_id", alert.ID, "owner", dl.sub.Owner, "channel", dl.channel, "error", err)
		rec.Status = domain.NotificationFailed
		rec.ErrorMessage = err.Error()
	} else {
		now := d.clock.Now().UTC()
		rec.Status = domain.NotificationSent
		rec.SentAt = &now
	}

	if d.metrics != nil {
		d.metrics.NotificationsTotal.WithLabelValues(string(dl.channel), string(rec.Status)).Inc()
	}
	if _, err := d.records.AppendNotification(ctx, rec); err != nil {
		d.logger.Error("failed to record notification", "alert_id", alert.ID, "error", err)
	}
	return rec.Status
}

func renderFor(alert domain.Alert, dl delivery) Message {
	switch dl.channel {
	case domain.ChannelEmail:
		return Message{
			Recipient: dl.sub.Email,
			Subject:   Subject(alert),
			Body:      RenderEmail(dl.sub.Owner, alert),
		}
	case domain.ChannelSMS:
		return Message{
			Recipient: dl.sub.PhoneNumber,
			Body:      RenderSMS(alert),
		}
	default:
		return Message{
			Recipient: dl.sub.Owner,
			Subject:   Subject(alert),
			Body:      RenderSMS(alert),
		}
	}
}

// LogTransport writes messages to the log instead of delivering them. Used
// when no real provider is configured.
type LogTransport struct {
	Channel domain.Channel
	Logger  *slog.Logger
}

func (t LogTransport) Send(_ context.Context, msg Message) error {
	t.Logger.Info("simulated notification delivery",
		"channel", t.Channel,
		"recipient", msg.Recipient,
		"subject", msg.Subject)
	return nil
}
