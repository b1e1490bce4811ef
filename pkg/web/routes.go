package web

import "github.com/gofiber/fiber/v3"

// Register mounts the workflow API on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)

	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Post("/import", h.ImportWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)

	w.Post("/:id/edits", h.ApplyEdit)

	w.Post("/:id/nodes", h.AddNode)
	w.Patch("/:id/nodes/:nodeId", h.UpdateNode)
	w.Delete("/:id/nodes/:nodeId", h.RemoveNode)

	w.Post("/:id/edges", h.Connect)
	w.Patch("/:id/edges/:edgeId", h.UpdateEdge)
	w.Delete("/:id/edges/:edgeId", h.Disconnect)

	w.Post("/:id/layout", h.AutoArrange)
	w.Get("/:id/validate", h.ValidateWorkflow)
	w.Post("/:id/save", h.SaveWorkflow)
	w.Post("/:id/discard", h.DiscardWorkflow)
	w.Get("/:id/export", h.ExportWorkflow)
}
