// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (store, registry, scheduler, publisher)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery, metrics)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - workflow_handler.go — загрузка, список и SSE-выполнение workflow
//   - diagram_handler.go  — Mermaid/HTML диаграммы
//   - schedule_handler.go — обработчики для /schedules
//
// Выполнение стримится как Server-Sent Events: по одному фрейму на
// событие, терминальная ошибка узла — фреймом "event: error".
package api
