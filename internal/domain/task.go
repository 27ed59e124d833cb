package domain

import "time"

// Task represents a personal to-do item owned by a registered user.
type Task struct {
	ID           int64
	Title        string
	Description  string
	CreationDate time.Time
	DueDate      time.Time
	IsCompleted  bool
	UserName     string
}
