// Package mq зеркалирует события выполнения workflow в RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - publisher.go  — публикация событий выполнения
//
// Exchange:
//   - cascade.events (topic) — события запусков, routing key "run.<workflow_id>"
//
// Зеркало опционально: включается переменной AMQP_URL. Основной поток
// событий (SSE) от него не зависит.
package mq
