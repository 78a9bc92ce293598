// Package engine содержит движок выполнения workflow.
//
// Включает:
//   - validate.go  — валидация WorkflowSpec
//   - order.go     — порядок выполнения (алгоритм Кана, fail-open)
//   - state.go     — состояние запуска (ключ → последняя запись)
//   - resolver.go  — разрешение $-ссылок на данные предыдущих узлов
//   - condition.go — вычисление условий (compare / expression)
//   - expr.go      — ограниченный вычислитель выражений
//   - engine.go    — диспетчер: plain / loop / switch, поток событий
//   - loop.go      — контроллер циклов (линейный и конкурентный)
//   - switch.go    — контроллер ветвления
//
// Движок получает готовый WorkflowSpec, определяет порядок top-level
// узлов, разрешает входы каждого узла из накопленного состояния и
// транслирует каждую произведённую запись в единый поток Event.
package engine
