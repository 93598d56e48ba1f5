package catalog

import (
	"errors"

	"catalog-sync/core/logger"
	catalogsync "catalog-sync/feature/catalog/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for catalog sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/run", h.HandleRun)
	group.Get("/status", h.HandleStatus)
	group.Get("/runs", h.HandleRuns)
}

// HandleRun triggers a background run.
// Query: force=true rewrites every record, pass=prices[,keys] restricts the run.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req := BuildRequest(c.Query("pass"), c.QueryBool("force", false))
	runID, err := h.service.Trigger(c.UserContext(), req)
	switch {
	case errors.Is(err, catalogsync.ErrRunInProgress):
		l.Info("Sync trigger rejected, run in progress")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, catalogsync.ErrUnknownPass):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Sync trigger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Sync run triggered",
		zap.String("run_id", runID),
		zap.Strings("passes", req.Passes),
		zap.Strings("forced", req.Force))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
		"run_id": runID,
		"passes": req.Passes,
	})
}

// HandleStatus returns whether a run is active and the last report.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleRuns lists the recorded pass summaries, newest first.
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Runs(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		l.Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": runs})
}
