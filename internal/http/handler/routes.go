package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/database"
	"paperapi/internal/service"
)

// Pinger reports backing store reachability; *database.Engine implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db Pinger, paperSvc service.PaperService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/papers", ListPapers(paperSvc))
	app.Post("/papers", CreatePaper(paperSvc))
	app.Get("/papers/:id", GetPaper(paperSvc))
	app.Delete("/papers/:id", DeletePaper(paperSvc))
	app.Post("/papers/:id/export", ExportPaper(paperSvc))
}

// HealthCheck checks backing store connectivity only.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListPapers lists stored papers.
//
// @Summary  List papers
// @Tags     papers
// @Produce  json
// @Param    limit  query int    false "page size"  default(10)
// @Param    offset query int    false "page start" default(0)
// @Param    level  query string false "level filter"
// @Success  200 {object} service.PaperListResult
// @Failure  400 {object} errorPayload
// @Router   /papers [get]
func ListPapers(paperSvc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := paperSvc.List(c.UserContext(), limit, offset, c.Query("level"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// CreatePaper stores a new paper configuration.
//
// @Summary  Create paper
// @Tags     papers
// @Accept   json
// @Produce  json
// @Param    paper body service.CreatePaperInput true "paper"
// @Success  201 {object} model.Paper
// @Failure  400 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /papers [post]
func CreatePaper(paperSvc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreatePaperInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		switch {
		case in.Title == "":
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
		case in.Level == "":
			return writeError(c, fiber.StatusBadRequest, "LEVEL_REQUIRED", "level is required")
		case in.Config == nil:
			return writeError(c, fiber.StatusBadRequest, "CONFIG_REQUIRED", "config is required")
		}

		p, err := paperSvc.Create(c.UserContext(), in)
		if err != nil {
			if database.IsConstraintViolation(err) {
				return writeError(c, fiber.StatusUnprocessableEntity, "CONSTRAINT_VIOLATION", "paper violates a storage constraint")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GetPaper returns a paper by ID.
//
// @Summary  Get paper
// @Tags     papers
// @Produce  json
// @Param    id path int true "paper id"
// @Success  200 {object} model.Paper
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /papers/{id} [get]
func GetPaper(paperSvc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paperID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := paperSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeletePaper removes a paper by ID.
//
// @Summary  Delete paper
// @Tags     papers
// @Param    id path int true "paper id"
// @Success  204
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /papers/{id} [delete]
func DeletePaper(paperSvc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paperID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := paperSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExportPaper uploads a paper configuration to object storage.
//
// @Summary  Export paper configuration
// @Tags     papers
// @Produce  json
// @Param    id path int true "paper id"
// @Success  200 {object} service.ExportResult
// @Failure  404 {object} errorPayload
// @Failure  501 {object} errorPayload
// @Router   /papers/{id}/export [post]
func ExportPaper(paperSvc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paperID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := paperSvc.Export(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func paperID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError translates service sentinels; anything else is an internal error.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "paper not found")
	case errors.Is(err, service.ErrInvalidID):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrExportDisabled):
		return writeError(c, fiber.StatusNotImplemented, "EXPORT_DISABLED", "export is not configured")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
