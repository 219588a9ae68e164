package web

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/tramio/tramio/pkg/engine"
	"github.com/tramio/tramio/pkg/inbox"
	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/visualization"
)

// APIHandlers holds the HTTP endpoints of the engine.
type APIHandlers struct {
	engine      *engine.Engine
	inbox       *inbox.Inbox
	reader      *visualization.Reader
	persistence persistence.Persistence
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewAPIHandlers(
	eng *engine.Engine,
	taskInbox *inbox.Inbox,
	reader *visualization.Reader,
	p persistence.Persistence,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		engine:      eng,
		inbox:       taskInbox,
		reader:      reader,
		persistence: p,
		validate:    validate,
		logger:      logger.With("module", "web"),
	}
}

func (h *APIHandlers) StartProcess(c fiber.Ctx) error {
	var req StartProcessRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	instance, err := h.engine.StartProcess(c.Context(), req.WorkflowID, req.Name, req.OrganizationID, req.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(instance)
}

func (h *APIHandlers) GetProcess(c fiber.Ctx) error {
	instance, err := h.persistence.Processes().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) GetProcessView(c fiber.Ctx) error {
	view, err := h.reader.Read(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) AdvanceProcess(c fiber.Ctx) error {
	var req AdvanceProcessRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	instance, err := h.engine.AdvanceProcess(c.Context(), c.Params("id"), req.TransitionID, req.Comment, req.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) CompleteProcess(c fiber.Ctx) error {
	var req CompleteProcessRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	instance, err := h.engine.CompleteProcess(c.Context(), c.Params("id"), req.Comment, req.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) AttendAll(c fiber.Ctx) error {
	var req AttendAllRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	active, err := h.engine.AttendAll(c.Context(), c.Params("id"), req.ActivityID, req.Fields, req.Comment, req.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(AttendAllResponse{ActiveTransitions: active})
}

// SaveProcessData stores the activity's form draft. Validation messages come
// back with the response but never block the save.
func (h *APIHandlers) SaveProcessData(c fiber.Ctx) error {
	var req SaveDataRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	processID := c.Params("id")
	activityID := c.Params("activityId")

	instance, err := h.persistence.Processes().GetByID(c.Context(), processID)
	if err != nil {
		return handleError(c, err)
	}

	fields, err := h.engine.FieldDefinitions(c.Context(), instance.WorkflowID, activityID)
	if err != nil {
		return handleError(c, err)
	}

	err = h.engine.SaveProcessData(c.Context(), processID, activityID, req.Fields)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(SaveDataResponse{
		ValidationMessages: h.engine.ValidateForm(c.Context(), fields, req.Fields),
	})
}

func (h *APIHandlers) GetProcessData(c fiber.Ctx) error {
	data, err := h.engine.ProcessData(c.Context(), c.Params("id"), c.Params("activityId"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(data)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	organizationID := c.Query("organization_id")
	if organizationID == "" {
		return badRequest(c, "organization_id query parameter is required")
	}

	workflows, err := h.persistence.Workflows().GetAll(c.Context(), organizationID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.persistence.Workflows().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetInbox(c fiber.Ctx) error {
	tasks, err := h.inbox.ActiveTasks(c.Context(), c.Params("userId"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(tasks)
}

func (h *APIHandlers) GetAutomationFailures(c fiber.Ctx) error {
	organizationID := c.Query("organization_id")
	if organizationID == "" {
		return badRequest(c, "organization_id query parameter is required")
	}

	since := time.Time{}

	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return badRequest(c, "since must be RFC3339: "+err.Error())
		}

		since = parsed
	}

	failures, err := h.inbox.AutomationFailures(c.Context(), organizationID, since)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(failures)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		h.logger.ErrorContext(c.Context(), "health check failed", "error", err)

		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
