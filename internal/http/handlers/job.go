package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quickgig/internal/app"
	"quickgig/internal/common"
	"quickgig/internal/domain/job"
	"quickgig/internal/http/middleware"
	"quickgig/internal/http/response"
)

type JobHandler struct {
	jobs         *app.JobService
	limiter      middleware.Limiter
	defaultLimit int
	maxLimit     int
}

func NewJobHandler(jobs *app.JobService, limiter middleware.Limiter, defaultLimit, maxLimit int) *JobHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &JobHandler{jobs: jobs, limiter: limiter, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

type jobRequest struct {
	Title                string          `json:"title"`
	Domain               string          `json:"domain"`
	Description          string          `json:"description"`
	SkillsRequired       *string         `json:"skills_required"`
	GenderPreference     *string         `json:"gender_preference"`
	AgePreference        *string         `json:"age_preference"`
	PayOffered           decimal.Decimal `json:"pay_offered"`
	IsNegotiable         bool            `json:"is_negotiable"`
	LocationAddress      string          `json:"location_address"`
	Latitude             *float64        `json:"latitude"`
	Longitude            *float64        `json:"longitude"`
	StartTime            time.Time       `json:"start_time"`
	EndTime              time.Time       `json:"end_time"`
	OptionalInstructions *string         `json:"optional_instructions"`
}

func (h *JobHandler) Post(w http.ResponseWriter, r *http.Request) {
	posterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	if h.limiter != nil {
		if !h.limiter.Allow("post-job:"+posterID.String(), 10, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "job posting rate limit exceeded", nil))
			return
		}
	}
	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.jobs.Post(r.Context(), job.Job{
		PosterID:             posterID,
		Title:                req.Title,
		Domain:               req.Domain,
		Description:          req.Description,
		SkillsRequired:       req.SkillsRequired,
		GenderPreference:     req.GenderPreference,
		AgePreference:        req.AgePreference,
		PayOffered:           req.PayOffered,
		IsNegotiable:         req.IsNegotiable,
		LocationAddress:      req.LocationAddress,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		OptionalInstructions: req.OptionalInstructions,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := job.Filter{
		Search:  strings.TrimSpace(query.Get("q")),
		Domains: query["domain"],
	}
	sort := job.SortRecent
	switch query.Get("sort") {
	case "pay":
		sort = job.SortPay
	case "start_time":
		sort = job.SortStartTime
	}
	limit, offset := h.pagination(query.Get("limit"), query.Get("offset"))
	items, err := h.jobs.List(r.Context(), filter, sort, limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *JobHandler) ListByPoster(w http.ResponseWriter, r *http.Request) {
	posterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.jobs.ListByPoster(r.Context(), posterID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

type jobTransitionRequest struct {
	Event string `json:"event"`
}

func (h *JobHandler) Transition(w http.ResponseWriter, r *http.Request) {
	posterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	jobID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req jobTransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	event := job.Event(strings.ToLower(strings.TrimSpace(req.Event)))
	if event == "" {
		response.Error(w, common.NewValidationError("invalid event", map[string]string{"event": "event is required"}))
		return
	}
	updated, err := h.jobs.TransitionByPoster(r.Context(), posterID, jobID, event)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *JobHandler) pagination(limitRaw, offsetRaw string) (int, int) {
	limit := h.defaultLimit
	offset := 0
	if limitRaw != "" {
		if parsed, err := strconv.Atoi(limitRaw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	if offsetRaw != "" {
		if parsed, err := strconv.Atoi(offsetRaw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
