package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks godoc
// @Summary List tasks
// @Description List the caller's tasks, most recently created first
// @Tags tasks
// @Produce json
// @Param category query string false "Category name, or all"
// @Param status query string false "completed or pending"
// @Param search query string false "Case-insensitive title substring"
// @Success 200 {array} entities.Task
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	filter := entities.TaskFilter{
		Category: c.QueryParam("category"),
		Status:   entities.TaskStatus(c.QueryParam("status")),
		Search:   c.QueryParam("search"),
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), userID, filter)
	if err != nil {
		requestLogger(h.logger, c, userID).WithError(err).Error("List tasks failed")
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Create a task
// @Description Create a task; omitted fields take their defaults
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 201 {object} entities.Task
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), userID, req)
	if err != nil {
		return toHTTPError(err)
	}

	requestLogger(h.logger, c, "").LogUserAction(userID.String(), "create_task", map[string]interface{}{"task_id": task.ID})

	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), userID, entities.ID(c.Param("id")))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Overwrite only the supplied fields; updated_at is always refreshed
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body ports.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	taskID := entities.ID(c.Param("id"))
	if err := h.taskService.UpdateTask(c.Request().Context(), userID, taskID, req); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task updated"})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	taskID := entities.ID(c.Param("id"))
	if err := h.taskService.DeleteTask(c.Request().Context(), userID, taskID); err != nil {
		return toHTTPError(err)
	}

	requestLogger(h.logger, c, "").LogUserAction(userID.String(), "delete_task", map[string]interface{}{"task_id": taskID})

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// GetStats godoc
// @Summary Task statistics
// @Description Totals, overdue count and per-category breakdown for the caller's tasks
// @Tags stats
// @Produce json
// @Success 200 {object} entities.TaskStats
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (h *TaskHandler) GetStats(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.taskService.GetStats(c.Request().Context(), userID)
	if err != nil {
		requestLogger(h.logger, c, userID).WithError(err).Error("Get stats failed")
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, stats)
}
