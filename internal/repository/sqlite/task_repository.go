package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taskmaster/internal/domain"
	"taskmaster/internal/repository"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	creation_date DATETIME NOT NULL,
	due_date DATETIME NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	user_name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_name ON tasks(user_name);
`

type TaskRepository struct {
	*genericRepository[domain.Task]
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{
		genericRepository: newGenericRepository(db, taskMapping),
		db:                db,
	}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

var taskMapping = entityMapping[domain.Task]{
	table:   "tasks",
	columns: []string{"title", "description", "creation_date", "due_date", "is_completed", "user_name"},
	values: func(task *domain.Task) []any {
		return []any{
			task.Title,
			task.Description,
			task.CreationDate.UTC(),
			task.DueDate.UTC(),
			task.IsCompleted,
			task.UserName,
		}
	},
	scan:  scanTask,
	setID: func(task *domain.Task, id int64) { task.ID = id },
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task         domain.Task
		creationDate time.Time
		dueDate      time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&creationDate,
		&dueDate,
		&task.IsCompleted,
		&task.UserName,
	); err != nil {
		return nil, err
	}
	task.CreationDate = creationDate.UTC()
	task.DueDate = dueDate.UTC()
	return &task, nil
}
