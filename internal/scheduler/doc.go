// Package scheduler реализует периодические запуски workflow.
//
// Расписания хранятся в памяти и задаются cron-выражением (5 полей)
// либо интервалом в секундах. Scheduler тикает с заданным периодом;
// каждый тик находит due-расписания, запускает движок workflow и
// дренирует поток событий в лог.
//
// Структура:
//   - scheduler.go — Schedule, реестр расписаний, Tick/Run
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Store:  st,
//	    Logger: logger,
//	})
//	go sched.Run(ctx, time.Second)
package scheduler
