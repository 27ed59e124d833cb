package mocks

import (
	"context"
	"sort"
	"sync"

	"taskmaster/internal/domain"
	"taskmaster/internal/repository"
)

// TaskRepository implements repository.TaskRepository in memory for testing.
// A set function field replaces the default behavior of its method.
type TaskRepository struct {
	AddFn     func(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByIDFn func(ctx context.Context, id int64) (*domain.Task, bool, error)
	GetAllFn  func(ctx context.Context) ([]domain.Task, error)
	UpdateFn  func(ctx context.Context, id int64, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id int64) error

	mu     sync.Mutex
	Tasks  map[int64]domain.Task
	nextID int64
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates an empty in-memory task store.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{Tasks: make(map[int64]domain.Task)}
}

func (m *TaskRepository) Init(context.Context) error {
	return nil
}

func (m *TaskRepository) Add(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, task)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task.ID = m.nextID
	m.Tasks[task.ID] = *task
	return task, nil
}

func (m *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.Tasks[id]
	if !ok {
		return nil, false, nil
	}
	return &task, true, nil
}

func (m *TaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]domain.Task, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *TaskRepository) Update(ctx context.Context, id int64, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, task)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[id]; !ok {
		return repository.ErrNotFound
	}
	m.Tasks[id] = *task
	return nil
}

func (m *TaskRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// Len returns the number of stored tasks.
func (m *TaskRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tasks)
}
