package observability

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// kafkaHeadersCarrier адаптирует заголовки kafka.Message к propagation.TextMapCarrier
type kafkaHeadersCarrier struct {
	headers *[]kafka.Header
}

func (c kafkaHeadersCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c kafkaHeadersCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c kafkaHeadersCarrier) Keys() []string {
	out := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		out = append(out, h.Key)
	}
	return out
}

// InjectKafkaHeaders записывает trace context из ctx в заголовки сообщения
func InjectKafkaHeaders(ctx context.Context, m *kafka.Message) {
	otel.GetTextMapPropagator().Inject(ctx, kafkaHeadersCarrier{headers: &m.Headers})
}

// ExtractKafkaHeaders возвращает ctx с trace context из заголовков сообщения
func ExtractKafkaHeaders(ctx context.Context, m kafka.Message) context.Context {
	headers := m.Headers
	return otel.GetTextMapPropagator().Extract(ctx, kafkaHeadersCarrier{headers: &headers})
}
