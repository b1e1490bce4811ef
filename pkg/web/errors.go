package web

import (
	"github.com/flowboard/flowboard/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	return badRequestOfType(c, "validation_error", detail)
}

func badRequestOfType(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError maps service layer errors onto problem responses. The
// detail always carries the original error text so the editing surface can
// show it inline.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsNotFoundError(err):
		problem := problems.NewStatusProblem(fiber.StatusNotFound).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsUnprocessableError(err):
		problem := problems.NewStatusProblem(fiber.StatusUnprocessableEntity).
			WithInstance(c.Path()).
			WithType("invalid_node_data").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case services.IsValidationError(err):
		if code, ok := services.ErrorCode(err); ok {
			return badRequestOfType(c, code, err.Error())
		}

		return badRequest(c, err.Error())

	default:
		problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
