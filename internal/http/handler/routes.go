package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundvote/internal/model"
	"fundvote/internal/service"
	"fundvote/internal/snapshot"
)

// Pinger reports store readiness. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SnapshotExporter writes a catalog snapshot to object storage.
type SnapshotExporter interface {
	Export(ctx context.Context) (*snapshot.Result, error)
}

// voteRequest is the body of POST /proposals/:id/votes.
type voteRequest struct {
	Direction string `json:"direction" example:"up"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil for stores without a connection to ping; snapshots may be nil
// when object storage is not configured, in which case POST /snapshots is not served.
func RegisterRoutes(app *fiber.App, db Pinger, svc service.ProposalService, snapshots SnapshotExporter) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/proposals", ListProposals(svc))
	app.Get("/proposals/:id", GetProposal(svc))
	app.Post("/proposals/:id/votes", VoteProposal(svc))

	if snapshots != nil {
		app.Post("/snapshots", ExportSnapshot(snapshots))
	}
}

// pathID copies the :id parameter out of Fiber's pooled request buffer so it
// can outlive the request (store keys, span attributes).
func pathID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// HealthCheck godoc
// @Summary Store readiness
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics serves the Prometheus exposition for g.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// ListProposals godoc
// @Summary List proposals
// @Description Filters by status and a case-insensitive search over title, abstract and institution, then sorts descending.
// @Tags proposals
// @Produce json
// @Param status query string false "all, pending, approved or rejected" default(all)
// @Param q query string false "search term"
// @Param sort query string false "recent, votes or funding" default(recent)
// @Success 200 {object} service.ProposalListResult
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /proposals [get]
func ListProposals(svc service.ProposalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := model.ParseFilter(
			utils.CopyString(c.Query("status")),
			utils.CopyString(c.Query("q")),
			utils.CopyString(c.Query("sort")),
		)
		if err != nil {
			return writeServiceError(c, err)
		}

		res, err := svc.List(c.UserContext(), f)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetProposal godoc
// @Summary Get a proposal
// @Tags proposals
// @Produce json
// @Param id path string true "proposal id"
// @Success 200 {object} model.Proposal
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /proposals/{id} [get]
func GetProposal(svc service.ProposalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, found, err := svc.Get(c.UserContext(), pathID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		if !found {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "proposal not found")
		}
		return c.JSON(p)
	}
}

// VoteProposal godoc
// @Summary Vote on a proposal
// @Description Adds one upvote or downvote. Repeated votes are all counted.
// @Tags proposals
// @Accept json
// @Produce json
// @Param id path string true "proposal id"
// @Param body body voteRequest true "vote direction (up or down)"
// @Success 200 {object} model.Proposal
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /proposals/{id}/votes [post]
func VoteProposal(svc service.ProposalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req voteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON with a direction field")
		}
		dir, err := model.ParseDirection(req.Direction)
		if err != nil {
			return writeServiceError(c, err)
		}

		p, found, err := svc.Vote(c.UserContext(), pathID(c), dir)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !found {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "proposal not found")
		}
		return c.JSON(p)
	}
}

// ExportSnapshot godoc
// @Summary Export a catalog snapshot
// @Description Writes every proposal to object storage and returns the object with a presigned download URL.
// @Tags snapshots
// @Produce json
// @Success 201 {object} snapshot.Result
// @Failure 503 {object} errorPayload
// @Router /snapshots [post]
func ExportSnapshot(exp SnapshotExporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := exp.Export(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
