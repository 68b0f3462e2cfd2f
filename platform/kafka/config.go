package kafka

import (
	"errors"
	"time"
)

// Config - подключение inventory к Kafka. Разбирается caarlos0/env как вложенная
// структура internal/config.Config.
type Config struct {
	// Enabled включает consumer событий заказа и publisher событий резервов.
	// Выключено - сервис работает только через HTTP.
	Enabled bool `env:"KAFKA_ENABLED" envDefault:"false"`
	// Brokers через запятую: "broker1:9092,broker2:9092".
	// Пусто - дефолт по APP_ENV (local: 127.0.0.1:19092, docker: kafka:9092).
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	OrderEventsTopic       string `env:"KAFKA_ORDER_EVENTS_TOPIC" envDefault:"order.events"`
	OrderEventsDLQTopic    string `env:"KAFKA_ORDER_EVENTS_DLQ_TOPIC" envDefault:"order.events.dlq"`
	ReservationEventsTopic string `env:"KAFKA_RESERVATION_EVENTS_TOPIC" envDefault:"inventory.reservation.events"`
	ConsumerGroupID        string `env:"KAFKA_CONSUMER_GROUP_ID" envDefault:"inventory-service"`

	// Retry обработки события заказа: base, 2*base, 4*base...
	MaxRetryAttempts int           `env:"KAFKA_MAX_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBackoffBase time.Duration `env:"KAFKA_RETRY_BACKOFF_BASE" envDefault:"1s"`
}

// Validate проверяет конфигурацию, если Kafka включена
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OrderEventsTopic == "" || c.OrderEventsDLQTopic == "" || c.ReservationEventsTopic == "" {
		return errors.New("kafka topics must not be empty")
	}
	if c.ConsumerGroupID == "" {
		return errors.New("KAFKA_CONSUMER_GROUP_ID is required when KAFKA_ENABLED=true")
	}
	if c.MaxRetryAttempts < 1 {
		return errors.New("KAFKA_MAX_RETRY_ATTEMPTS must be at least 1")
	}
	if c.RetryBackoffBase <= 0 {
		return errors.New("KAFKA_RETRY_BACKOFF_BASE must be positive")
	}
	return nil
}
