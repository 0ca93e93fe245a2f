package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/http/response"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/services"
)

type ReviewHandler struct {
	log     *logger.Logger
	reviews services.ReviewService
}

func NewReviewHandler(log *logger.Logger, reviews services.ReviewService) *ReviewHandler {
	return &ReviewHandler{log: log.With("handler", "ReviewHandler"), reviews: reviews}
}

// POST /submissions
// body: { "report_id": "...", "reviewer_id": "...", "notes": "..." }
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		ReportID   string  `json:"report_id" binding:"required"`
		ReviewerID string  `json:"reviewer_id" binding:"required"`
		Notes      *string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	reportID, err1 := uuid.Parse(req.ReportID)
	reviewerID, err2 := uuid.Parse(req.ReviewerID)
	if err1 != nil || err2 != nil {
		badRequest(c, "invalid report_id or reviewer_id")
		return
	}
	sub, err := h.reviews.Submit(c.Request.Context(), userID, reportID, reviewerID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"submission": sub})
}

// GET /submissions?limit=20
func (h *ReviewHandler) ListMine(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.reviews.ListMine(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": list})
}

// GET /submissions/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.reviews.GetSubmission(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// GET /reviewers
func (h *ReviewHandler) ListReviewers(c *gin.Context) {
	list, err := h.reviews.ListReviewers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviewers": list})
}

// GET /review/queue?status=pending,in_review&limit=20
func (h *ReviewHandler) Queue(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var statuses []string
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}
	list, err := h.reviews.ListQueue(c.Request.Context(), userID, statuses, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": list})
}

// POST /review/submissions/:id/start
func (h *ReviewHandler) Start(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.reviews.StartReview(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submission": sub})
}

// POST /review/submissions/:id/feedback
func (h *ReviewHandler) Feedback(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Text                string   `json:"feedback_text" binding:"required"`
		SuggestedDiagnosis  *string  `json:"suggested_diagnosis"`
		Grade               *string  `json:"grade"`
		IsApproved          bool     `json:"is_approved"`
		RevisionRequired    bool     `json:"revision_required"`
		IsRejected          bool     `json:"is_rejected"`
		Strengths           []string `json:"strengths"`
		AreasForImprovement []string `json:"areas_for_improvement"`
	}
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.reviews.Review(c.Request.Context(), userID, id, services.FeedbackInput{
		Text:                req.Text,
		SuggestedDiagnosis:  req.SuggestedDiagnosis,
		Grade:               req.Grade,
		IsApproved:          req.IsApproved,
		RevisionRequired:    req.RevisionRequired,
		IsRejected:          req.IsRejected,
		Strengths:           req.Strengths,
		AreasForImprovement: req.AreasForImprovement,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, out)
}
