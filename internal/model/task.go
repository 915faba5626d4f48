package model

import "time"

// 优先级约定值。仅作约定，存储时不做校验，任意字符串原样保留。
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task 表示一条待办任务。
//
// 任务只属于创建它的用户；其他用户视角下与不存在的任务无法区分。
type Task struct {
	ID          int       `json:"id"`     // 任务 ID（独立计数器，从 1 开始）
	UserID      int       `json:"userId"` // 所属用户 ID
	Title       string    `json:"title"`  // 标题（必填非空）
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    string    `json:"priority"` // 约定 low/medium/high，默认 medium
	DueDate     *string   `json:"dueDate"`  // 可选截止日期，null 表示未设置
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"` // 每次变更（含 toggle）刷新
}
