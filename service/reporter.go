package service

import (
	"context"
	"encoding/json"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/cipolleschi/instagram/model"
	Logger "github.com/cipolleschi/instagram/utils/log"
)

const notificationCounter = "instagram.notification.sent"

// Reporter's job is to drain the notification bus, log every notification and
// report per-kind counters to Datadog (or other service if there's any) for
// monitoring purpose.
type Reporter struct {
	// Statsd may be nil when no agent is configured, in which case only
	// logging happens.
	Statsd *statsd.Client

	Notifier *Notifier
}

func NewReporter(statsd *statsd.Client, n *Notifier) *Reporter {
	return &Reporter{
		Statsd:   statsd,
		Notifier: n,
	}
}

// ProcessNotifications consumes every notification topic until ctx is
// canceled. Run it in its own goroutine.
func (r *Reporter) ProcessNotifications(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	topics := []string{
		TopicWelcomeNotification,
		TopicLikeNotification,
		TopicPostCreatedNotification,
	}

	for _, topic := range topics {
		messages, err := r.Notifier.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go r.drain(topic, messages)
	}

	<-ctx.Done()
	return nil
}

func (r *Reporter) drain(topic string, messages <-chan *message.Message) {
	for msg := range messages {
		msg.Ack()

		notification := model.Notification{}
		if err := json.Unmarshal(msg.Payload, &notification); err != nil {
			Logger.Log.Errorf("fail to decode notification on topic %s, error: %s", topic, err)
			continue
		}

		Logger.Log.Infof("notification [%s] %s: %s", notification.Data["type"], notification.Title, notification.Body)

		if r.Statsd == nil {
			continue
		}
		if err := r.Statsd.Incr(notificationCounter, []string{notification.Data["type"]}, 1); err != nil {
			Logger.Log.Infoln("cannot report notification counter")
		}
	}
}
