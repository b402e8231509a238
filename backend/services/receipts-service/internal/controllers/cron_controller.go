package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/dtos"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/services"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// CronController exposes the sweeps to an external scheduler. The routes
// sit behind the cron-secret middleware.
type CronController struct {
	scheduler services.SchedulerService
	now       func() time.Time
}

func NewCronController(s services.SchedulerService) *CronController {
	return &CronController{scheduler: s, now: time.Now}
}

// POST /api/v1/cron/reminders
func (c *CronController) RemindersHandler(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, services.SweepKindReminder, c.scheduler.RunReminderSweep)
}

// POST /api/v1/cron/auto-send
func (c *CronController) AutoSendHandler(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, services.SweepKindAutoSend, c.scheduler.RunAutoSendSweep)
}

func (c *CronController) run(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	sweep func(ctx context.Context, now time.Time) ([]services.SweepResult, error),
) {
	var req dtos.SweepRequest
	if !decodeAndValidate(w, r, &req, true) {
		return
	}
	at := c.now()
	if req.Now != nil {
		at = *req.Now
	}

	results, err := sweep(r.Context(), at)
	if err != nil {
		utils.Logger.WithError(err).Errorf("%s sweep failed", kind)
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Sweep failed", nil, err,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SweepResponse{Kind: kind, RanAt: at.UTC(), Results: results})
}
