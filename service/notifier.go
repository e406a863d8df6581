package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/cipolleschi/instagram/model"
	Logger "github.com/cipolleschi/instagram/utils/log"
)

// One topic per notification kind so consumers can subscribe selectively.
const (
	TopicWelcomeNotification     = "notification.welcome"
	TopicLikeNotification        = "notification.like"
	TopicPostCreatedNotification = "notification.post_created"
)

// Notifier publishes fire-and-forget alert payloads on an in-process event
// bus. Delivery is best effort: publish failures are logged and never
// propagated back to the repository caller that triggered them.
type Notifier struct {
	// The EventBus notifications travel on. For now we use a golang channel
	// implementation for the EventBus, but later when needed we could
	// substitute it with a broker-backed one.
	EventBus *gochannel.GoChannel
}

func NewNotifier() *Notifier {
	return &Notifier{
		EventBus: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

// Subscribe returns a channel of raw messages published on topic. The
// subscription lives until ctx is canceled.
func (n *Notifier) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return n.EventBus.Subscribe(ctx, topic)
}

func (n *Notifier) publish(topic string, notification *model.Notification) {
	data, err := json.Marshal(notification)
	if err != nil {
		Logger.Log.Errorf("fail to serialize notification on topic %s, error: %s", topic, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := n.EventBus.Publish(topic, msg); err != nil {
		Logger.Log.Errorf("fail to publish notification on topic %s, error: %s", topic, err)
	}
}

// SendWelcome greets a freshly signed-up user.
func (n *Notifier) SendWelcome(username string) {
	n.publish(TopicWelcomeNotification, &model.Notification{
		Title: "Welcome to Instagram! 🎉",
		Body:  fmt.Sprintf("Hi %s! Start sharing your moments.", username),
		Data: map[string]string{
			"type": string(model.NotificationWelcome),
		},
	})
}

// SendLike notifies that likerUsername liked the referenced post.
func (n *Notifier) SendLike(like *model.Like, likerUsername string) {
	n.publish(TopicLikeNotification, &model.Notification{
		Title: "Someone liked your post! ❤️",
		Body:  fmt.Sprintf("%s liked your post!", likerUsername),
		Data: map[string]string{
			"type":    string(model.NotificationLike),
			"post_id": like.PostId,
			"like_id": like.Id,
		},
	})
}

// SendPostCreated confirms a successful post creation.
func (n *Notifier) SendPostCreated(postId string) {
	n.publish(TopicPostCreatedNotification, &model.Notification{
		Title: "Post Created! 📸",
		Body:  "Your post has been shared successfully!",
		Data: map[string]string{
			"type":    string(model.NotificationPostCreated),
			"post_id": postId,
		},
	})
}
