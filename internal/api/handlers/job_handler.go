package handlers

import (
	"github.com/gofiber/fiber/v2"

	job "github.com/fbuehler/autopost-api/internal/jobs"
)

type JobHandler struct {
	checker *job.JobCheckerJob
}

func NewJobHandler(checker *job.JobCheckerJob) *JobHandler {
	return &JobHandler{checker: checker}
}

// CheckJobs triggers one reconciliation sweep synchronously. Overlap with
// the cron-driven sweep is safe.
func (h *JobHandler) CheckJobs(c *fiber.Ctx) error {
	h.checker.CheckJobs()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Job check completed",
	})
}
