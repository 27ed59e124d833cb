package service

import (
	"time"

	"taskmaster/internal/domain"
	"taskmaster/internal/validation"
)

// CreateTaskCommand asks for a new task owned by UserName.
type CreateTaskCommand struct {
	Title       string    `json:"title" validate:"required,notblank,notplaceholder"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate" validate:"notpast"`
	UserName    string    `json:"userName" validate:"required,notblank,notplaceholder"`
}

// UpdateTaskCommand overwrites the editable fields of task ID. It carries no owner.
type UpdateTaskCommand struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" validate:"required,notblank,notplaceholder"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate" validate:"notpast"`
}

// DeleteTaskCommand removes task ID.
type DeleteTaskCommand struct {
	ID int64
}

// GetTaskByIDQuery reads task ID.
type GetTaskByIDQuery struct {
	ID int64
}

// GetAllTasksQuery lists every task.
type GetAllTasksQuery struct{}

// TaskDTO is the read projection of a task.
type TaskDTO struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreationDate time.Time `json:"creationDate"`
	DueDate      time.Time `json:"dueDate"`
	IsCompleted  bool      `json:"isCompleted"`
	UserName     string    `json:"userName"`
}

// TaskUpdateResponse is the projection returned after an update.
type TaskUpdateResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
}

const (
	msgTitleRequired    = "Title can't be null or empty"
	msgTitlePlaceholder = "The title cannot be 'string'."
	msgDueDatePast      = "The due date must be greater than or equal to the current date."
)

const msgUserNameRequired = "The username cannot be null."

var createTaskMessages = validation.Messages{
	"Title.required":          msgTitleRequired,
	"Title.notblank":          msgTitleRequired,
	"Title.notplaceholder":    msgTitlePlaceholder,
	"DueDate.notpast":         msgDueDatePast,
	"UserName.required":       msgUserNameRequired,
	"UserName.notblank":       msgUserNameRequired,
	"UserName.notplaceholder": "The username cannot be 'string'.",
}

var updateTaskMessages = validation.Messages{
	"Title.required":       msgTitleRequired,
	"Title.notblank":       msgTitleRequired,
	"Title.notplaceholder": msgTitlePlaceholder,
	"DueDate.notpast":      msgDueDatePast,
}

func toTaskDTO(task domain.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		CreationDate: task.CreationDate,
		DueDate:      task.DueDate,
		IsCompleted:  task.IsCompleted,
		UserName:     task.UserName,
	}
}

func toTaskUpdateResponse(task domain.Task) TaskUpdateResponse {
	return TaskUpdateResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
	}
}
