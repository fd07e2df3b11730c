package rabbitmq

// QueueConfig binds one queue to a routing key on the notifications
// exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Routing keys for membership notifications.
const (
	RoutingKeyMembership = "membership"
)

// GetNotificationQueues lists the queues the notifier consumes.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.membership", RoutingKey: RoutingKeyMembership},
	}
}
