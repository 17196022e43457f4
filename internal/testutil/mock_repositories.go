// Package testutil provides testing utilities and mock implementations.
package testutil

import (
	"context"
	"sort"
	"sync"

	"todo-me/internal/domain"
)

// MockTaskRepository implements repository.TaskRepository in memory.
// Entities are cloned on the way in and out so tests can mutate what
// they hold without reaching into the store, and so the transaction
// manager can snapshot state by copying the maps.
type MockTaskRepository struct {
	tasks map[string]*domain.Task
	mu    sync.RWMutex

	// FailCreate and FailUpdate, when set, make the corresponding
	// call return the error. Used to exercise failure paths.
	FailCreate error
	FailUpdate error
}

// NewMockTaskRepository creates a new mock task repository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{tasks: make(map[string]*domain.Task)}
}

func cloneTask(task *domain.Task) *domain.Task {
	clone := *task
	if task.TagIDs != nil {
		clone.TagIDs = append([]string(nil), task.TagIDs...)
	}
	return &clone
}

// GetByID retrieves a task by ID.
func (m *MockTaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, exists := m.tasks[id]
	if !exists {
		return nil, domain.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
	}
	return cloneTask(task), nil
}

// ListByUser lists a user's tasks ordered by position.
func (m *MockTaskRepository) ListByUser(_ context.Context, userID string, offset, limit int) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == userID {
			tasks = append(tasks, cloneTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	return paginate(tasks, offset, limit), nil
}

// ListByProject lists a project's tasks ordered by position.
func (m *MockTaskRepository) ListByProject(_ context.Context, projectID string, offset, limit int) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*domain.Task
	for _, task := range m.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			tasks = append(tasks, cloneTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	return paginate(tasks, offset, limit), nil
}

// CountByUser counts a user's tasks.
func (m *MockTaskRepository) CountByUser(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, task := range m.tasks {
		if task.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Create creates a new task.
func (m *MockTaskRepository) Create(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate != nil {
		return m.FailCreate
	}
	if _, exists := m.tasks[task.ID]; exists {
		return domain.NewConflictError("TASK_EXISTS", "Task already exists")
	}
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// Update updates an existing task.
func (m *MockTaskRepository) Update(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if _, exists := m.tasks[task.ID]; !exists {
		return domain.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
	}
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// Delete deletes a task by ID.
func (m *MockTaskRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[id]; !exists {
		return domain.NewNotFoundError("TASK_NOT_FOUND", "Task not found")
	}
	delete(m.tasks, id)
	return nil
}

func (m *MockTaskRepository) snapshotState() interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(map[string]*domain.Task, len(m.tasks))
	for id, task := range m.tasks {
		snap[id] = cloneTask(task)
	}
	return snap
}

func (m *MockTaskRepository) restoreState(state interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = state.(map[string]*domain.Task)
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// MockProjectRepository implements repository.ProjectRepository in memory.
type MockProjectRepository struct {
	projects map[string]*domain.Project
	mu       sync.RWMutex
}

// NewMockProjectRepository creates a new mock project repository.
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{projects: make(map[string]*domain.Project)}
}

func cloneProject(project *domain.Project) *domain.Project {
	clone := *project
	return &clone
}

// GetByID retrieves a project by ID.
func (m *MockProjectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, exists := m.projects[id]
	if !exists {
		return nil, domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
	}
	return cloneProject(project), nil
}

// ListByUser lists a user's projects.
func (m *MockProjectRepository) ListByUser(_ context.Context, userID string, offset, limit int) ([]*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var projects []*domain.Project
	for _, project := range m.projects {
		if project.UserID == userID {
			projects = append(projects, cloneProject(project))
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.Before(projects[j].CreatedAt) })
	return paginate(projects, offset, limit), nil
}

// Create creates a new project.
func (m *MockProjectRepository) Create(_ context.Context, project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[project.ID]; exists {
		return domain.NewConflictError("PROJECT_EXISTS", "Project already exists")
	}
	m.projects[project.ID] = cloneProject(project)
	return nil
}

// Update updates an existing project.
func (m *MockProjectRepository) Update(_ context.Context, project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[project.ID]; !exists {
		return domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
	}
	m.projects[project.ID] = cloneProject(project)
	return nil
}

// Delete deletes a project by ID.
func (m *MockProjectRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[id]; !exists {
		return domain.NewNotFoundError("PROJECT_NOT_FOUND", "Project not found")
	}
	delete(m.projects, id)
	return nil
}

func (m *MockProjectRepository) snapshotState() interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(map[string]*domain.Project, len(m.projects))
	for id, project := range m.projects {
		snap[id] = cloneProject(project)
	}
	return snap
}

func (m *MockProjectRepository) restoreState(state interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = state.(map[string]*domain.Project)
}

// MockTagRepository implements repository.TagRepository in memory.
type MockTagRepository struct {
	tags map[string]*domain.Tag
	mu   sync.RWMutex
}

// NewMockTagRepository creates a new mock tag repository.
func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{tags: make(map[string]*domain.Tag)}
}

// GetByID retrieves a tag by ID.
func (m *MockTagRepository) GetByID(_ context.Context, id string) (*domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tag, exists := m.tags[id]
	if !exists {
		return nil, domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
	}
	clone := *tag
	return &clone, nil
}

// ListByUser lists a user's tags.
func (m *MockTagRepository) ListByUser(_ context.Context, userID string, offset, limit int) ([]*domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tags []*domain.Tag
	for _, tag := range m.tags {
		if tag.UserID == userID {
			clone := *tag
			tags = append(tags, &clone)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return paginate(tags, offset, limit), nil
}

// Create creates a new tag.
func (m *MockTagRepository) Create(_ context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tags[tag.ID]; exists {
		return domain.NewConflictError("TAG_EXISTS", "Tag already exists")
	}
	clone := *tag
	m.tags[tag.ID] = &clone
	return nil
}

// Update updates an existing tag.
func (m *MockTagRepository) Update(_ context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tags[tag.ID]; !exists {
		return domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
	}
	clone := *tag
	m.tags[tag.ID] = &clone
	return nil
}

// Delete deletes a tag by ID.
func (m *MockTagRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tags[id]; !exists {
		return domain.NewNotFoundError("TAG_NOT_FOUND", "Tag not found")
	}
	delete(m.tags, id)
	return nil
}

// MockUserRepository implements repository.UserRepository in memory.
type MockUserRepository struct {
	users map[string]*domain.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// GetByID retrieves a user by ID.
func (m *MockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, domain.NewNotFoundError("USER_NOT_FOUND", "User not found")
	}
	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email.
func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.NewNotFoundError("USER_NOT_FOUND", "User not found")
}

// Create creates a new user.
func (m *MockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return domain.NewConflictError("EMAIL_EXISTS", "Email already exists")
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}
