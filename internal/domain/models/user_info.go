package models

import "time"

// UserInfo хранит баланс очков пользователя.
type UserInfo struct {
	UserID       string    `json:"userId"`
	Points       int       `json:"points"`
	LastPointSet time.Time `json:"lastPointSet"`
}

type PointSystemSettings struct {
	UserJoinAmount   int
	UserTimedAmount  int
	PointGivingDelay time.Duration
}
