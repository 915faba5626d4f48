package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BlackJack-14/taskManager/internal/model"
	"github.com/BlackJack-14/taskManager/internal/pkg/metrics"
	"github.com/BlackJack-14/taskManager/internal/store"

	"github.com/gin-gonic/gin"
)

// createTaskRequest 创建任务的请求参数。title 之外的字段均可省略。
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// updateTaskRequest 部分更新的请求参数。
// 指针区分「字段未出现」与「显式设为零值」，显式的 ""/false 同样会被应用。
type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Completed   *bool          `json:"completed"`
	Priority    *string        `json:"priority"`
	DueDate     nullableString `json:"dueDate"`
}

// nullableString 记录 JSON key 是否出现，从而区分「缺省」与「显式 null」。
type nullableString struct {
	value *string
	set   bool
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.set = true
	if string(data) == "null" {
		n.value = nil
		return nil
	}
	return json.Unmarshal(data, &n.value)
}

// handleListTasks 按插入顺序返回当前用户的全部任务。
func (s *Server) handleListTasks(c *gin.Context) {
	tasks := s.store.TasksByUser(getUserID(c))
	c.JSON(http.StatusOK, tasks)
}

// handleGetTask 返回单个任务。其他用户的任务与不存在的任务同样返回 404。
func (s *Server) handleGetTask(c *gin.Context) {
	id := parseTaskID(c)
	task, err := s.store.TaskByID(id, getUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleCreateTask 创建任务。
//
// POST /api/tasks
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := s.store.CreateTask(model.Task{
		UserID:      getUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    priority,
		DueDate:     req.DueDate,
	})

	if s.logger != nil {
		s.logger.Info("task created",
			slog.Int("task_id", task.ID),
			slog.Int("user_id", task.UserID),
			slog.String("priority", task.Priority),
		)
	}
	if metrics.TasksCreatedTotal != nil {
		metrics.TasksCreatedTotal.Inc()
	}

	c.JSON(http.StatusCreated, task)
}

// handleUpdateTask 应用部分更新并返回完整任务。
//
// PUT /api/tasks/:id
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     req.DueDate.value,
		DueDateSet:  req.DueDate.set,
	}

	id := parseTaskID(c)
	task, err := s.store.UpdateTask(id, getUserID(c), upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// handleDeleteTask 删除任务并回显被删除的记录。
//
// DELETE /api/tasks/:id
func (s *Server) handleDeleteTask(c *gin.Context) {
	id := parseTaskID(c)
	task, err := s.store.DeleteTask(id, getUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if s.logger != nil {
		s.logger.Info("task deleted", slog.Int("task_id", task.ID), slog.Int("user_id", task.UserID))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"task":    task,
	})
}

// handleToggleTask 翻转完成状态。
//
// PATCH /api/tasks/:id/toggle
func (s *Server) handleToggleTask(c *gin.Context) {
	id := parseTaskID(c)
	task, err := s.store.ToggleTask(id, getUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if task.Completed && metrics.TasksCompletedTotal != nil {
		metrics.TasksCompletedTotal.Inc()
	}

	c.JSON(http.StatusOK, task)
}

// parseTaskID 解析路径参数。非数字返回 0，后续查找必然落到 404。
func parseTaskID(c *gin.Context) int {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0
	}
	return id
}
