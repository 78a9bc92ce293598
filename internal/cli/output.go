package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output форматирует результаты команд.
//
// Данные (таблицы, JSON, события выполнения) идут в stdout, служебные
// сообщения Success/Error — в stderr. Разделение позволяет передавать
// данные дальше по pipe без мусора: cascade workflow list --json | jq .
type Output struct {
	jsonMode bool
	data     io.Writer
	messages io.Writer
}

// NewOutput создаёт Output. В режиме jsonMode все данные выводятся
// как JSON вместо таблиц.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		data:     os.Stdout,
		messages: os.Stderr,
	}
}

// Print выводит таблицу либо, в режиме --json, исходную структуру.
func (o *Output) Print(headers []string, rows [][]string, raw any) {
	if o.jsonMode {
		o.JSON(raw)
		return
	}
	o.Table(headers, rows)
}

// Table выводит строки через tabwriter с подчёркнутыми заголовками.
func (o *Output) Table(headers []string, rows [][]string) {
	underline := make([]string, len(headers))
	for i, h := range headers {
		underline[i] = strings.Repeat("-", len(h))
	}

	tw := tabwriter.NewWriter(o.data, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Join(underline, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// JSON выводит значение как JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.data)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Event выводит одно событие потока выполнения.
//
// В режиме --json каждое событие печатается отдельной JSON-строкой,
// чтобы поток можно было обрабатывать построчно. В обычном режиме —
// компактная строка "узел  result"; записи из итераций цикла получают
// суффикс "#N" у идентификатора узла.
func (o *Output) Event(ev Event) {
	if o.jsonMode {
		json.NewEncoder(o.data).Encode(ev)
		return
	}

	label := ev.NodeID
	if ev.LoopIteration > 0 {
		label = fmt.Sprintf("%s#%d", ev.NodeID, ev.LoopIteration)
	}

	result, ok := ev.Output["result"]
	if !ok {
		result = ev.Output
	}
	fmt.Fprintf(o.data, "%-24s %v\n", label, result)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.messages, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.messages, "Error: "+msg)
}
