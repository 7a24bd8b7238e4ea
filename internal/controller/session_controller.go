package controller

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type SessionController struct {
	Sessions *service.SessionService
	Ticker   *service.SessionTicker
	upgrader websocket.Upgrader
}

func NewSessionController(sessions *service.SessionService, ticker *service.SessionTicker) *SessionController {
	return &SessionController{
		Sessions: sessions,
		Ticker:   ticker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens via the bearer token, origins are handled by CORS.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// @Summary Start or resume an attempt on a published test
// @Tags session
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "test id"
// @Success 201 {object} util.Response
// @Router /api/tests/{id}/attempts [post]
func (c *SessionController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	testID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.Sessions.Start(claims.UserID, testID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// @Summary Session view of an attempt
// @Tags session
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	view, err := c.Sessions.Session(attemptID, claims.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type saveAnswerRequest struct {
	// nil clears the selection; the question stays marked as visited.
	SelectedOption   *int `json:"selectedOption" binding:"omitempty,min=1,max=4"`
	TimeSpentSeconds int  `json:"timeSpentSeconds" binding:"min=0"`
}

// @Summary Save or clear one answer (debounced server-side)
// @Tags session
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Param questionId path int true "question id"
// @Param body body saveAnswerRequest true "selection"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers/{questionId} [put]
func (c *SessionController) SaveAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := parseUintParam(ctx, "questionId")
	if !ok {
		return
	}

	var req saveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Sessions.SaveAnswer(attemptID, claims.UserID, questionID, req.SelectedOption, req.TimeSpentSeconds); err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"buffered": true})
}

type reviewRequest struct {
	IsReviewed bool `json:"isReviewed"`
}

// @Summary Toggle the mark-for-review flag (persists immediately)
// @Tags session
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Param questionId path int true "question id"
// @Param body body reviewRequest true "flag"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers/{questionId}/review [put]
func (c *SessionController) SetReview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := parseUintParam(ctx, "questionId")
	if !ok {
		return
	}

	var req reviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Sessions.MarkForReview(attemptID, claims.UserID, questionID, req.IsReviewed); err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"isReviewed": req.IsReviewed})
}

// @Summary Submit an attempt
// @Tags session
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.Sessions.Submit(attemptID, claims.UserID, false)
	if err != nil {
		// The desired end state already holds; report it as success.
		if errors.Is(err, util.ErrAlreadyTerminal) {
			util.Success(ctx, attempt)
			return
		}
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

type integrityEventRequest struct {
	EventType string `json:"eventType" binding:"required,oneof=fullscreen_exit fullscreen_unsupported tab_blur"`
	Detail    string `json:"detail" binding:"max=500"`
}

// @Summary Report a client integrity event
// @Tags session
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Param body body integrityEventRequest true "event"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/events [post]
func (c *SessionController) ReportEvent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req integrityEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Sessions.ReportIntegrityEvent(
		attemptID, claims.UserID, model.IntegrityEventType(req.EventType), req.Detail)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary Websocket countdown for an attempt
// @Tags session
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Router /api/attempts/{id}/ticker [get]
func (c *SessionController) Countdown(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if _, err := c.Sessions.Attempt(attemptID, claims.UserID); err != nil {
		c.writeError(ctx, err)
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		return
	}
	c.Ticker.Stream(conn, attemptID, claims.UserID)
}

// @Summary Result and per-question breakdown of a finished attempt
// @Tags session
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/result [get]
func (c *SessionController) GetResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.Sessions.Result(attemptID, claims.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func (c *SessionController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrTestNotFound),
		errors.Is(err, util.ErrTestNotPublished):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAlreadyCompleted),
		errors.Is(err, util.ErrAttemptTerminal),
		errors.Is(err, util.ErrAttemptNotFinal),
		errors.Is(err, util.ErrAlreadyTerminal):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrQuestionNotInTest):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
