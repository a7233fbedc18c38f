package models

import "time"

// TimerSettings описывает глобальные настройки таймерных команд.
type TimerSettings struct {
	Interval time.Duration
	Enabled  bool
}
