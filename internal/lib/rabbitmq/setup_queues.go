package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очередей напоминаний об оплате пакетов.
const (
	PaymentDueQueue      = "reminder.payment"
	PaymentUpcomingQueue = "reminder.upcoming"

	PaymentDueRoutingKey      = "payment"
	PaymentUpcomingRoutingKey = "upcoming"
)

// GetReminderQueues возвращает конфигурацию очередей напоминаний.
func GetReminderQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: PaymentDueQueue, RoutingKey: PaymentDueRoutingKey},
		{QueueName: PaymentUpcomingQueue, RoutingKey: PaymentUpcomingRoutingKey},
	}
}
