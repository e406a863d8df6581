package model

type NotificationType string

const (
	NotificationWelcome     NotificationType = "welcome"
	NotificationLike        NotificationType = "like"
	NotificationPostCreated NotificationType = "post_created"
)

// Notification is the fire-and-forget alert payload published on the event
// bus after signup, post creation and liking. Data carries the relevant
// entity ids plus the notification type.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}
