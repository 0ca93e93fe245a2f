package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/http/response"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/services"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionService) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), sessions: sessions}
}

// GET /regions
func (h *SessionHandler) ListRegions(c *gin.Context) {
	response.RespondOK(c, gin.H{"regions": h.sessions.ListRegions()})
}

// POST /sessions
// body: { "region_id": "chest" }
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		RegionID string `json:"region_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.sessions.SelectRegion(c.Request.Context(), userID, req.RegionID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": sess})
}

// GET /sessions?limit=20
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.sessions.ListSessions(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": list})
}

// GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	detail, err := h.sessions.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// POST /sessions/:id/symptoms
func (h *SessionHandler) GenerateSymptoms(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	symptoms, err := h.sessions.RequestSymptoms(c.Request.Context(), userID, sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"symptoms": symptoms})
}

// PUT /sessions/:id/symptoms
// body: { "selected": ["sym_1", "Chest pain"] }
func (h *SessionHandler) SelectSymptoms(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	var req struct {
		Selected []string `json:"selected"`
	}
	if !bindJSON(c, &req) {
		return
	}
	symptoms, err := h.sessions.SubmitSymptoms(c.Request.Context(), userID, sessionID, req.Selected)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"symptoms": symptoms})
}

// POST /sessions/:id/questions
func (h *SessionHandler) GenerateQuestions(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	steps, err := h.sessions.RequestQuestions(c.Request.Context(), userID, sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"steps": steps})
}

// POST /sessions/:id/steps/:step/answer
// body: { "option_id": "b", "option_text": "optional override" }
func (h *SessionHandler) Answer(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	stepNumber, ok := intParam(c, "step")
	if !ok {
		return
	}
	var req struct {
		OptionID   string `json:"option_id" binding:"required"`
		OptionText string `json:"option_text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.sessions.AnswerStep(c.Request.Context(), userID, sessionID, stepNumber, req.OptionID, req.OptionText)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"step": res.Step, "stage": res.Stage, "remaining": res.Remaining})
}

// POST /sessions/:id/diagnosis
func (h *SessionHandler) GenerateDiagnosis(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	view, err := h.sessions.RequestDiagnosis(c.Request.Context(), userID, sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /sessions/:id/final-diagnosis
// body: { "differential_id": "...", "rationale": "..." }
func (h *SessionHandler) SelectFinal(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	var req struct {
		DifferentialID string  `json:"differential_id" binding:"required"`
		Rationale      *string `json:"rationale"`
	}
	if !bindJSON(c, &req) {
		return
	}
	differentialID, err := uuid.Parse(req.DifferentialID)
	if err != nil {
		badRequest(c, "invalid differential_id")
		return
	}
	res, err := h.sessions.SelectFinalDiagnosis(c.Request.Context(), userID, sessionID, differentialID, req.Rationale)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"final_diagnosis": res.Final, "session": res.Session})
}

// POST /sessions/:id/report
func (h *SessionHandler) CreateReport(c *gin.Context) {
	userID, sessionID, ok := h.ids(c)
	if !ok {
		return
	}
	var req struct {
		Title            string   `json:"title" binding:"required"`
		Subjective       string   `json:"subjective"`
		Objective        string   `json:"objective"`
		Assessment       string   `json:"assessment"`
		Plan             string   `json:"plan"`
		ExecutiveSummary *string  `json:"executive_summary"`
		KeyFindings      []string `json:"key_findings"`
	}
	if !bindJSON(c, &req) {
		return
	}
	rep, err := h.sessions.BuildReport(c.Request.Context(), userID, sessionID, services.ReportInput{
		Title:            req.Title,
		Subjective:       req.Subjective,
		Objective:        req.Objective,
		Assessment:       req.Assessment,
		Plan:             req.Plan,
		ExecutiveSummary: req.ExecutiveSummary,
		KeyFindings:      req.KeyFindings,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": rep})
}

func (h *SessionHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := caller(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
