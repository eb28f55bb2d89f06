package web

import (
	"errors"

	"github.com/dukex/operion-octagon/pkg/persistence"
	"github.com/dukex/operion-octagon/pkg/registry"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleError maps registry and persistence errors to problem responses.
func handleError(c fiber.Ctx, err error) error {
	var paramErr *registry.ParameterError

	switch {
	case errors.As(err, &paramErr):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_parameters").
			WithDetail(paramErr.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, registry.ErrNodeTypeNotRegistered):
		return notFound(c, "node_not_found", "node type not found")

	case errors.Is(err, registry.ErrCredentialTypeNotRegistered):
		return notFound(c, "credential_type_not_found", "credential type not found")

	case persistence.IsExecutionNotFound(err):
		return notFound(c, "execution_not_found", "execution not found")

	case errors.Is(err, persistence.ErrInvalidExecutionID):
		return badRequest(c, err.Error())

	default:
		return internalError(c, err)
	}
}
