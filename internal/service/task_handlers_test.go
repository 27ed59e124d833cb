package service

import (
	"context"
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmaster/internal/domain"
	"taskmaster/internal/mocks"
	"taskmaster/internal/repository"
	"taskmaster/internal/validation"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newTestHandlers(tasks *mocks.TaskRepository, users *mocks.UserVerifier) *TaskHandlers {
	logger, _ := logtest.NewNullLogger()
	return NewTaskHandlers(tasks, users, validation.New(clock), logger, clock)
}

func seedTask(t *testing.T, repo *mocks.TaskRepository, task domain.Task) int64 {
	t.Helper()
	added, err := repo.Add(context.Background(), &task)
	require.NoError(t, err)
	return added.ID
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("persists a task for a registered owner", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		h := newTestHandlers(repo, mocks.NewUserVerifier("alice"))

		due := testNow.AddDate(0, 0, 3)
		resp, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			Title:       "Write report",
			Description: "quarterly numbers",
			DueDate:     due,
			UserName:    "alice",
		})
		require.NoError(t, err)
		assert.True(t, resp.Succeeded)
		require.NotZero(t, resp.Data)

		stored := repo.Tasks[resp.Data]
		assert.Equal(t, "Write report", stored.Title)
		assert.Equal(t, "quarterly numbers", stored.Description)
		assert.Equal(t, testNow, stored.CreationDate)
		assert.Equal(t, due, stored.DueDate)
		assert.False(t, stored.IsCompleted)
		assert.Equal(t, "alice", stored.UserName)
	})

	t.Run("unknown owner fails without inserting", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		h := newTestHandlers(repo, mocks.NewUserVerifier("alice"))

		resp, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			Title:    "Write report",
			DueDate:  testNow,
			UserName: "mallory",
		})
		require.NoError(t, err)
		assert.False(t, resp.Succeeded)
		assert.Equal(t, MsgOwnerNotRegistered, resp.Message)
		assert.Zero(t, resp.Data)
		assert.Zero(t, repo.Len())
	})

	t.Run("validation reports every failing field before the handler runs", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		users := mocks.NewUserVerifier("alice")
		h := newTestHandlers(repo, users)

		_, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			Title:    "string",
			DueDate:  testNow.AddDate(0, 0, -1),
			UserName: "alice",
		})
		var verr *validation.Errors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{
			"The title cannot be 'string'.",
			"The due date must be greater than or equal to the current date.",
		}, verr.Messages())
		assert.Empty(t, users.Calls)
		assert.Zero(t, repo.Len())
	})

	t.Run("missing title and placeholder owner", func(t *testing.T) {
		t.Parallel()
		h := newTestHandlers(mocks.NewTaskRepository(), mocks.NewUserVerifier())

		_, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			DueDate:  testNow,
			UserName: "string",
		})
		var verr *validation.Errors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{
			"Title can't be null or empty",
			"The username cannot be 'string'.",
		}, verr.Messages())
	})

	t.Run("whitespace title and owner are rejected", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		users := mocks.NewUserVerifier("alice")
		h := newTestHandlers(repo, users)

		_, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			Title:    "   ",
			DueDate:  testNow,
			UserName: "\t ",
		})
		var verr *validation.Errors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{
			"Title can't be null or empty",
			"The username cannot be null.",
		}, verr.Messages())
		assert.Empty(t, users.Calls)
		assert.Zero(t, repo.Len())
	})

	t.Run("due today is accepted", func(t *testing.T) {
		t.Parallel()
		h := newTestHandlers(mocks.NewTaskRepository(), mocks.NewUserVerifier("alice"))

		resp, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			Title:    "Same day",
			DueDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			UserName: "alice",
		})
		require.NoError(t, err)
		assert.True(t, resp.Succeeded)
	})

	t.Run("verifier failure is returned unchanged", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("users offline")
		users := &mocks.UserVerifier{VerifyUserFn: func(context.Context, string) (bool, error) {
			return false, boom
		}}
		h := newTestHandlers(mocks.NewTaskRepository(), users)

		_, err := h.Create.Handle(context.Background(), CreateTaskCommand{
			Title: "t", DueDate: testNow, UserName: "alice",
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	original := domain.Task{
		Title:        "Old",
		Description:  "old description",
		CreationDate: testNow.AddDate(0, 0, -5),
		DueDate:      testNow.AddDate(0, 0, 1),
		IsCompleted:  true,
		UserName:     "alice",
	}

	t.Run("overwrites editable fields and keeps the rest", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		id := seedTask(t, repo, original)
		h := newTestHandlers(repo, mocks.NewUserVerifier())

		due := testNow.AddDate(0, 1, 0)
		resp, err := h.Update.Handle(context.Background(), UpdateTaskCommand{
			ID: id, Title: "New", Description: "new description", DueDate: due,
		})
		require.NoError(t, err)
		assert.True(t, resp.Succeeded)
		assert.Equal(t, TaskUpdateResponse{ID: id, Title: "New", Description: "new description", DueDate: due}, resp.Data)

		stored := repo.Tasks[id]
		assert.Equal(t, "New", stored.Title)
		assert.Equal(t, original.CreationDate, stored.CreationDate)
		assert.Equal(t, "alice", stored.UserName)
		assert.True(t, stored.IsCompleted)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		h := newTestHandlers(mocks.NewTaskRepository(), mocks.NewUserVerifier())

		_, err := h.Update.Handle(context.Background(), UpdateTaskCommand{ID: 99, Title: "x", DueDate: testNow})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("whitespace title is rejected", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		id := seedTask(t, repo, original)
		h := newTestHandlers(repo, mocks.NewUserVerifier())

		_, err := h.Update.Handle(context.Background(), UpdateTaskCommand{ID: id, Title: " \n ", DueDate: testNow})
		var verr *validation.Errors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Title can't be null or empty"}, verr.Messages())
		assert.Equal(t, "Old", repo.Tasks[id].Title)
	})

	t.Run("task removed between read and write", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		id := seedTask(t, repo, original)
		repo.UpdateFn = func(context.Context, int64, *domain.Task) error {
			return repository.ErrNotFound
		}
		h := newTestHandlers(repo, mocks.NewUserVerifier())

		_, err := h.Update.Handle(context.Background(), UpdateTaskCommand{ID: id, Title: "x", DueDate: testNow})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("invalid update never reaches the store", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		id := seedTask(t, repo, original)
		h := newTestHandlers(repo, mocks.NewUserVerifier())

		_, err := h.Update.Handle(context.Background(), UpdateTaskCommand{ID: id, Title: "", DueDate: testNow})
		var verr *validation.Errors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Title can't be null or empty"}, verr.Messages())
		assert.Equal(t, "Old", repo.Tasks[id].Title)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	repo := mocks.NewTaskRepository()
	id := seedTask(t, repo, domain.Task{Title: "gone soon", UserName: "alice"})
	h := newTestHandlers(repo, mocks.NewUserVerifier())

	resp, err := h.Delete.Handle(context.Background(), DeleteTaskCommand{ID: id})
	require.NoError(t, err)
	assert.Equal(t, id, resp.Data)
	assert.Zero(t, repo.Len())

	_, err = h.Delete.Handle(context.Background(), DeleteTaskCommand{ID: id})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = h.GetByID.Handle(context.Background(), GetTaskByIDQuery{ID: id})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetTaskByID(t *testing.T) {
	t.Parallel()

	repo := mocks.NewTaskRepository()
	task := domain.Task{
		Title:        "Read",
		Description:  "a book",
		CreationDate: testNow,
		DueDate:      testNow.AddDate(0, 0, 2),
		UserName:     "alice",
	}
	id := seedTask(t, repo, task)
	h := newTestHandlers(repo, mocks.NewUserVerifier())

	resp, err := h.GetByID.Handle(context.Background(), GetTaskByIDQuery{ID: id})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, TaskDTO{
		ID:           id,
		Title:        "Read",
		Description:  "a book",
		CreationDate: testNow,
		DueDate:      testNow.AddDate(0, 0, 2),
		IsCompleted:  false,
		UserName:     "alice",
	}, resp.Data)

	_, err = h.GetByID.Handle(context.Background(), GetTaskByIDQuery{ID: id + 1})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetAllTasks(t *testing.T) {
	t.Parallel()

	t.Run("empty store has no content", func(t *testing.T) {
		t.Parallel()
		h := newTestHandlers(mocks.NewTaskRepository(), mocks.NewUserVerifier())

		_, err := h.GetAll.Handle(context.Background(), GetAllTasksQuery{})
		assert.ErrorIs(t, err, ErrNoContent)
	})

	t.Run("lists in store order", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		first := seedTask(t, repo, domain.Task{Title: "first", UserName: "alice"})
		second := seedTask(t, repo, domain.Task{Title: "second", UserName: "bob"})
		h := newTestHandlers(repo, mocks.NewUserVerifier())

		resp, err := h.GetAll.Handle(context.Background(), GetAllTasksQuery{})
		require.NoError(t, err)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, first, resp.Data[0].ID)
		assert.Equal(t, second, resp.Data[1].ID)
		assert.Equal(t, "bob", resp.Data[1].UserName)
	})

	t.Run("cancellation surfaces unchanged", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewTaskRepository()
		seedTask(t, repo, domain.Task{Title: "first", UserName: "alice"})
		h := newTestHandlers(repo, mocks.NewUserVerifier())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.GetAll.Handle(ctx, GetAllTasksQuery{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoggedRecordsFailures(t *testing.T) {
	t.Parallel()

	logger, hook := logtest.NewNullLogger()
	boom := errors.New("disk full")
	h := Chain[GetAllTasksQuery, Response[[]TaskDTO]](
		HandlerFunc[GetAllTasksQuery, Response[[]TaskDTO]](func(context.Context, GetAllTasksQuery) (Response[[]TaskDTO], error) {
			return Response[[]TaskDTO]{}, boom
		}),
		Logged[GetAllTasksQuery, Response[[]TaskDTO]](logger, "GetAllTasks"),
	)

	_, err := h.Handle(context.Background(), GetAllTasksQuery{})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "handler failed", hook.LastEntry().Message)
	assert.Equal(t, "GetAllTasks", hook.LastEntry().Data["handler"])
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var trace []string
	mark := func(name string) Behavior[int, int] {
		return func(next Handler[int, int]) Handler[int, int] {
			return HandlerFunc[int, int](func(ctx context.Context, req int) (int, error) {
				trace = append(trace, name)
				return next.Handle(ctx, req)
			})
		}
	}
	h := Chain[int, int](HandlerFunc[int, int](func(_ context.Context, req int) (int, error) {
		trace = append(trace, "handler")
		return req * 2, nil
	}), mark("outer"), mark("inner"))

	got, err := h.Handle(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}
