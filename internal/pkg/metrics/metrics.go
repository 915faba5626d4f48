package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal 按方法/路径/状态码统计的请求总数。
	HTTPRequestsTotal *prometheus.CounterVec
	// UsersRegisteredTotal 注册成功总数。
	UsersRegisteredTotal prometheus.Counter
	// LoginsTotal 登录成功总数。
	LoginsTotal prometheus.Counter
	// TasksCreatedTotal 任务创建总数。
	TasksCreatedTotal prometheus.Counter
	// TasksCompletedTotal toggle 置为完成的次数。
	TasksCompletedTotal prometheus.Counter
	// ActiveUsers 当前在线用户数（由 presence 刷新器维护）。
	ActiveUsers prometheus.Gauge

	initOnce sync.Once
)

// InitMetrics 注册所有指标。重复调用是安全的。
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"})

		UsersRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_users_registered_total",
			Help: "Total successful registrations.",
		})

		LoginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_logins_total",
			Help: "Total successful logins.",
		})

		TasksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_tasks_created_total",
			Help: "Total tasks created.",
		})

		TasksCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_tasks_completed_total",
			Help: "Total toggles that marked a task completed.",
		})

		ActiveUsers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskmanager_active_users",
			Help: "Users seen within the presence TTL window.",
		})

		prometheus.MustRegister(
			HTTPRequestsTotal,
			UsersRegisteredTotal,
			LoginsTotal,
			TasksCreatedTotal,
			TasksCompletedTotal,
			ActiveUsers,
		)
	})
}
