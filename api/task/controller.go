/*
Package task exposes the task use cases over HTTP.

Handlers never write error bodies themselves: they attach the error with
ctx.Error and the error middleware renders it.
*/
package task

import (
	"taskflow/api/ctxutil"
	"taskflow/api/response"
	"taskflow/api/validation"
	taskapp "taskflow/application/task"
	"taskflow/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	basePath    = "/api/tasks"
	serviceName = "taskflow"
)

type Controller struct {
	taskService *taskapp.Service
}

func NewController(taskService *taskapp.Service) *Controller {
	return &Controller{taskService: taskService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	taskGroup := router.Group("/tasks")
	{
		taskGroup.GET("", c.ListTasks)
		taskGroup.POST("", c.CreateTask)
		taskGroup.GET("/ping", c.Ping)
		taskGroup.GET("/:id", c.GetTask)
		taskGroup.POST("/:id/complete", c.CompleteTask)
	}
}

// ListTasks GET /api/tasks
func (c *Controller) ListTasks(ctx *gin.Context) {
	tasks, err := c.taskService.ListTasks(ctxutil.WithRequestID(ctx))
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	response.HandleSuccess(ctx, tasks)
}

// Ping GET /api/tasks/ping
func (c *Controller) Ping(ctx *gin.Context) {
	response.HandleSuccess(ctx, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

// GetTask GET /api/tasks/:id
func (c *Controller) GetTask(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	task, found, err := c.taskService.GetTask(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	if !found {
		_ = ctx.Error(errors.TaskNotFound(id))
		return
	}

	response.HandleSuccess(ctx, task)
}

// CreateTask POST /api/tasks
func (c *Controller) CreateTask(ctx *gin.Context) {
	var req taskapp.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(validation.Translate(err))
		return
	}

	task, err := c.taskService.CreateTask(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	response.HandleCreated(ctx, basePath+"/"+task.ID, task)
}

// CompleteTask POST /api/tasks/:id/complete
func (c *Controller) CompleteTask(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	found, err := c.taskService.CompleteTask(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	if !found {
		_ = ctx.Error(errors.TaskNotFound(id))
		return
	}

	response.HandleNoContent(ctx)
}

// parseID accepts only UUIDs. Anything else cannot name a task, so it is
// reported as not found rather than as a bad request.
func parseID(ctx *gin.Context) (string, bool) {
	raw := ctx.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = ctx.Error(errors.TaskNotFound(raw))
		return "", false
	}
	return id.String(), true
}
