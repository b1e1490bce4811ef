// Package web provides HTTP handlers and REST API endpoints for editing
// workflow definitions.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/flowboard/flowboard/pkg/document"
	"github.com/flowboard/flowboard/pkg/editor"
	"github.com/flowboard/flowboard/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	editorService   *services.Editor
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	editorService *services.Editor,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		editorService:   editorService,
		validator:       validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowboard API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowboard API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), req.Name, req.Description, req.Template)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ImportWorkflow stores a JSON or YAML document. The format comes from the
// format query parameter, then the Content-Type header, then the body itself.
func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Document body is required")
	}

	format, err := requestFormat(c, body)
	if err != nil {
		return badRequest(c, err.Error())
	}

	definition, err := document.Decode(body, format)
	if err != nil {
		return handleServiceError(c, err)
	}

	imported, err := h.workflowService.Import(c.Context(), definition)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.editorService.Discard(imported.ID)

	return c.Status(fiber.StatusCreated).JSON(imported)
}

func requestFormat(c fiber.Ctx, body []byte) (document.Format, error) {
	if name := c.Query("format"); name != "" {
		return document.ParseFormat(name)
	}

	if contentType := c.Get(fiber.HeaderContentType); contentType != "" {
		if format, err := document.ParseFormat(mediaType(contentType)); err == nil {
			return format, nil
		}
	}

	return document.Detect(body), nil
}

func mediaType(contentType string) string {
	media, _, _ := strings.Cut(contentType, ";")

	return strings.TrimSpace(media)
}

// GetWorkflow returns the live snapshot of an open editing session, or the
// stored definition when nobody is editing it.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	definition, err := h.editorService.Snapshot(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(definition)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.editorService.Rename(c.Context(), c.Params("id"), req.Name, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.editorService.Discard(id)

	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyEdit applies one edit event from the rendering surface.
func (h *APIHandlers) ApplyEdit(c fiber.Ctx) error {
	var edit editor.Edit
	if err := c.Bind().JSON(&edit); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.apply(c, edit, func(resp EditResponse) error {
		return c.JSON(resp)
	})
}

func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	var req AddNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	edit := editor.Edit{Type: editor.EditNodeAdded, Kind: req.Kind, Position: req.Position, Data: req.Data}

	return h.apply(c, edit, func(resp EditResponse) error {
		return c.Status(fiber.StatusCreated).JSON(resp.Workflow.NodeByID(resp.NodeID))
	})
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	edit := editor.Edit{Type: editor.EditNodeDataChanged, NodeID: c.Params("nodeId"), Data: req.Data, Position: req.Position}
	if req.Data == nil {
		edit.Type = editor.EditNodeMoved
	}

	return h.apply(c, edit, func(resp EditResponse) error {
		return c.JSON(resp.Workflow.NodeByID(resp.NodeID))
	})
}

func (h *APIHandlers) RemoveNode(c fiber.Ctx) error {
	edit := editor.Edit{Type: editor.EditNodeRemoved, NodeID: c.Params("nodeId")}

	return h.apply(c, edit, func(EditResponse) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	edit := editor.Edit{
		Type:       editor.EditEdgeAdded,
		Source:     req.Source,
		Target:     req.Target,
		Label:      req.Label,
		Style:      req.Style,
		Transition: req.Transition,
	}

	return h.apply(c, edit, func(resp EditResponse) error {
		return c.Status(fiber.StatusCreated).JSON(resp.Workflow.EdgeByID(resp.EdgeID))
	})
}

func (h *APIHandlers) UpdateEdge(c fiber.Ctx) error {
	var req UpdateEdgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	edit := editor.Edit{
		Type:       editor.EditEdgeChanged,
		EdgeID:     c.Params("edgeId"),
		Label:      req.Label,
		Style:      req.Style,
		Transition: req.Transition,
	}

	return h.apply(c, edit, func(resp EditResponse) error {
		return c.JSON(resp.Workflow.EdgeByID(resp.EdgeID))
	})
}

func (h *APIHandlers) Disconnect(c fiber.Ctx) error {
	edit := editor.Edit{Type: editor.EditEdgeRemoved, EdgeID: c.Params("edgeId")}

	return h.apply(c, edit, func(EditResponse) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func (h *APIHandlers) apply(c fiber.Ctx, edit editor.Edit, respond func(EditResponse) error) error {
	result, snapshot, err := h.editorService.Apply(c.Context(), c.Params("id"), edit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return respond(EditResponse{
		Type:     result.Type,
		NodeID:   result.NodeID,
		EdgeID:   result.EdgeID,
		Workflow: snapshot,
	})
}

func (h *APIHandlers) AutoArrange(c fiber.Ctx) error {
	arranged, err := h.editorService.AutoArrange(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(arranged)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	issues, err := h.editorService.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ValidationResponse{Valid: len(issues) == 0, Issues: issues})
}

func (h *APIHandlers) SaveWorkflow(c fiber.Ctx) error {
	saved, err := h.editorService.Save(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) DiscardWorkflow(c fiber.Ctx) error {
	h.editorService.Discard(c.Params("id"))

	return c.SendStatus(fiber.StatusNoContent)
}

// ExportWorkflow serializes the current snapshot as JSON (default) or YAML.
func (h *APIHandlers) ExportWorkflow(c fiber.Ctx) error {
	format := document.FormatJSON

	if name := c.Query("format"); name != "" {
		parsed, err := document.ParseFormat(name)
		if err != nil {
			return badRequest(c, err.Error())
		}

		format = parsed
	}

	definition, err := h.editorService.Snapshot(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	raw, err := document.Encode(definition, format)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+definition.ID+"."+string(format)+`"`)

	return c.Send(raw)
}
