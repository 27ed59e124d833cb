package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"taskmaster/internal/domain"
	"taskmaster/internal/repository"
	"taskmaster/internal/validation"
)

// UserVerifier reports whether a username belongs to a registered account.
type UserVerifier interface {
	VerifyUser(ctx context.Context, userName string) (bool, error)
}

// TaskHandlers is the registry of task commands and queries. Each entry is a
// fully assembled pipeline: logging, then validation where the request has rules,
// then the handler itself.
type TaskHandlers struct {
	Create  Handler[CreateTaskCommand, Response[int64]]
	Update  Handler[UpdateTaskCommand, Response[TaskUpdateResponse]]
	Delete  Handler[DeleteTaskCommand, Response[int64]]
	GetByID Handler[GetTaskByIDQuery, Response[TaskDTO]]
	GetAll  Handler[GetAllTasksQuery, Response[[]TaskDTO]]
}

// NewTaskHandlers registers the task handlers over their collaborators.
func NewTaskHandlers(tasks repository.TaskRepository, users UserVerifier, v *validation.Validator, log logrus.FieldLogger, now func() time.Time) *TaskHandlers {
	if now == nil {
		now = time.Now
	}
	return &TaskHandlers{
		Create: Chain[CreateTaskCommand, Response[int64]](
			&createTaskHandler{tasks: tasks, users: users, now: now},
			Logged[CreateTaskCommand, Response[int64]](log, "CreateTask"),
			Validated[CreateTaskCommand, Response[int64]](v, createTaskMessages),
		),
		Update: Chain[UpdateTaskCommand, Response[TaskUpdateResponse]](
			&updateTaskHandler{tasks: tasks},
			Logged[UpdateTaskCommand, Response[TaskUpdateResponse]](log, "UpdateTask"),
			Validated[UpdateTaskCommand, Response[TaskUpdateResponse]](v, updateTaskMessages),
		),
		Delete: Chain[DeleteTaskCommand, Response[int64]](
			&deleteTaskHandler{tasks: tasks},
			Logged[DeleteTaskCommand, Response[int64]](log, "DeleteTask"),
		),
		GetByID: Chain[GetTaskByIDQuery, Response[TaskDTO]](
			&getTaskByIDHandler{tasks: tasks},
			Logged[GetTaskByIDQuery, Response[TaskDTO]](log, "GetTaskByID"),
		),
		GetAll: Chain[GetAllTasksQuery, Response[[]TaskDTO]](
			&getAllTasksHandler{tasks: tasks},
			Logged[GetAllTasksQuery, Response[[]TaskDTO]](log, "GetAllTasks"),
		),
	}
}

type createTaskHandler struct {
	tasks repository.TaskRepository
	users UserVerifier
	now   func() time.Time
}

func (h *createTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (Response[int64], error) {
	ok, err := h.users.VerifyUser(ctx, cmd.UserName)
	if err != nil {
		return Response[int64]{}, err
	}
	if !ok {
		return Fail[int64](0, MsgOwnerNotRegistered), nil
	}

	task := &domain.Task{
		Title:        cmd.Title,
		Description:  cmd.Description,
		CreationDate: h.now().UTC(),
		DueDate:      cmd.DueDate.UTC(),
		IsCompleted:  false,
		UserName:     cmd.UserName,
	}
	task, err = h.tasks.Add(ctx, task)
	if err != nil {
		return Response[int64]{}, err
	}
	return OK(task.ID), nil
}

type updateTaskHandler struct {
	tasks repository.TaskRepository
}

func (h *updateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (Response[TaskUpdateResponse], error) {
	existing, ok, err := h.tasks.GetByID(ctx, cmd.ID)
	if err != nil {
		return Response[TaskUpdateResponse]{}, err
	}
	if !ok {
		return Response[TaskUpdateResponse]{}, ErrTaskNotFound
	}

	updated := *existing
	updated.Title = cmd.Title
	updated.Description = cmd.Description
	updated.DueDate = cmd.DueDate.UTC()

	if err := h.tasks.Update(ctx, existing.ID, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Response[TaskUpdateResponse]{}, ErrTaskNotFound
		}
		return Response[TaskUpdateResponse]{}, err
	}
	return OK(toTaskUpdateResponse(updated)), nil
}

type deleteTaskHandler struct {
	tasks repository.TaskRepository
}

func (h *deleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) (Response[int64], error) {
	task, ok, err := h.tasks.GetByID(ctx, cmd.ID)
	if err != nil {
		return Response[int64]{}, err
	}
	if !ok {
		return Response[int64]{}, ErrTaskNotFound
	}

	if err := h.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Response[int64]{}, ErrTaskNotFound
		}
		return Response[int64]{}, err
	}
	return OK(task.ID), nil
}

type getTaskByIDHandler struct {
	tasks repository.TaskRepository
}

func (h *getTaskByIDHandler) Handle(ctx context.Context, q GetTaskByIDQuery) (Response[TaskDTO], error) {
	task, ok, err := h.tasks.GetByID(ctx, q.ID)
	if err != nil {
		return Response[TaskDTO]{}, err
	}
	if !ok {
		return Response[TaskDTO]{}, ErrTaskNotFound
	}
	return OK(toTaskDTO(*task)), nil
}

type getAllTasksHandler struct {
	tasks repository.TaskRepository
}

func (h *getAllTasksHandler) Handle(ctx context.Context, _ GetAllTasksQuery) (Response[[]TaskDTO], error) {
	tasks, err := h.tasks.GetAll(ctx)
	if err != nil {
		return Response[[]TaskDTO]{}, err
	}
	if len(tasks) == 0 {
		return Response[[]TaskDTO]{}, ErrNoContent
	}

	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(tasks[i])
	}
	return OK(dtos), nil
}
