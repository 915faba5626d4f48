package store

import (
	"errors"
	"sync"
	"time"

	"github.com/BlackJack-14/taskManager/internal/model"
)

var (
	// ErrNotFound 任务不存在，或不属于当前用户（两者对外不作区分）。
	ErrNotFound = errors.New("task not found")
	// ErrEmailExists 注册邮箱已被占用。
	ErrEmailExists = errors.New("user already exists")
	// ErrUserNotFound 用户不存在。
	ErrUserNotFound = errors.New("user not found")
)

// Store 持有进程生命周期内的全部数据。
//
// users/tasks 都是普通切片，追加创建、按下标删除，进程重启即清空。
// 互斥锁保证并发下的不变量：邮箱唯一性检查与插入在同一临界区内完成，
// ID 单调递增且永不复用。所有方法返回值拷贝，调用方持有的数据不会被后续变更影响。
type Store struct {
	mu         sync.Mutex
	users      []model.User
	tasks      []model.Task
	nextUserID int
	nextTaskID int
}

// NewStore 创建一个空 Store，两个 ID 计数器都从 1 开始。
func NewStore() *Store {
	return &Store{
		nextUserID: 1,
		nextTaskID: 1,
	}
}

// CreateUser 追加一个新用户。邮箱重复时返回 ErrEmailExists。
func (s *Store) CreateUser(email, passwordHash, name string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return model.User{}, ErrEmailExists
		}
	}

	u := model.User{
		ID:        s.nextUserID,
		Email:     email,
		Password:  passwordHash,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.nextUserID++
	s.users = append(s.users, u)
	return u, nil
}

// UserByEmail 按邮箱精确匹配（区分大小写）查找用户。
func (s *Store) UserByEmail(email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

// UserByID 按 ID 查找用户。
func (s *Store) UserByID(id int) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

// Counts 返回当前用户数与任务数，用于健康检查。
func (s *Store) Counts() (users, tasks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.tasks)
}

// CreateTask 追加一个新任务，分配 ID 与时间戳。
func (s *Store) CreateTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t.ID = s.nextTaskID
	t.CreatedAt = now
	t.UpdatedAt = now
	s.nextTaskID++
	s.tasks = append(s.tasks, t)
	return t
}

// TasksByUser 按插入顺序返回该用户的全部任务。永远返回非 nil 切片。
func (s *Store) TasksByUser(userID int) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// TaskByID 按 ID + 所有权查找任务。
func (s *Store) TaskByID(id, userID int) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id, userID)
	if idx < 0 {
		return model.Task{}, ErrNotFound
	}
	return s.tasks[idx], nil
}

// TaskUpdate 描述一次部分更新。指针为 nil 表示请求体中未出现该字段。
// DueDate 需要区分「未出现」与「显式置空」，所以额外带一个 set 标记。
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	DueDate     *string
	DueDateSet  bool
}

// UpdateTask 应用请求体中出现的字段，显式的 ""/false/null 同样生效，并刷新 UpdatedAt。
func (s *Store) UpdateTask(id, userID int, upd TaskUpdate) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id, userID)
	if idx < 0 {
		return model.Task{}, ErrNotFound
	}

	t := &s.tasks[idx]
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.DueDateSet {
		t.DueDate = upd.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	return *t, nil
}

// DeleteTask 按下标移除任务并返回被删除的拷贝。
func (s *Store) DeleteTask(id, userID int) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id, userID)
	if idx < 0 {
		return model.Task{}, ErrNotFound
	}

	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return removed, nil
}

// ToggleTask 翻转完成状态并刷新 UpdatedAt。
func (s *Store) ToggleTask(id, userID int) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id, userID)
	if idx < 0 {
		return model.Task{}, ErrNotFound
	}

	t := &s.tasks[idx]
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	return *t, nil
}

// indexOf 调用方必须持有锁。
func (s *Store) indexOf(id, userID int) int {
	for i, t := range s.tasks {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}
