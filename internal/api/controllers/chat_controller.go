package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripmate/internal/agent"
	"tripmate/internal/models/request_models"
	"tripmate/internal/planguard"
	"tripmate/internal/services"
	mem "tripmate/pkg/memcache"
	"tripmate/pkg/utils"
)

type ChatResponse struct {
	SessionID string `json:"session_id"`
	*services.TurnReply
}

type SessionHistoryResponse struct {
	SessionID string       `json:"session_id"`
	Items     []agent.Item `json:"items"`
}

type ChatController struct {
	chat       services.ChatServiceInterface
	sessions   services.SessionServiceInterface
	guardrails services.GuardrailServiceInterface
	locks      mem.SessionLockStore
	logger     *zap.Logger
}

func NewChatController(
	chat services.ChatServiceInterface,
	sessions services.SessionServiceInterface,
	guardrails services.GuardrailServiceInterface,
	locks mem.SessionLockStore,
	logger *zap.Logger,
) *ChatController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatController{
		chat:       chat,
		sessions:   sessions,
		guardrails: guardrails,
		locks:      locks,
		logger:     logger,
	}
}

// ChatHandler runs one turn. A new session id is issued when none is given.
func (cc *ChatController) ChatHandler(c *gin.Context) {
	var req request_models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	} else {
		id, err := canonicalSessionID(req.SessionID)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		req.SessionID = id
	}

	release, ok := cc.locks.TryAcquire(req.SessionID)
	if !ok {
		utils.HandleServiceError(c, utils.ErrSessionBusy)
		return
	}
	defer release()

	ctx := c.Request.Context()
	session := cc.sessions.Load(ctx, req.SessionID)
	reply, turnErr := cc.chat.ProcessTurn(ctx, session, req.Message, func(check planguard.Check) {
		cc.logger.Info("auto-repair",
			zap.String("session", req.SessionID),
			zap.String("reason", string(check.Reason)),
			zap.Int("target_days", check.TargetDays))
	})

	if err := cc.sessions.Save(ctx, session); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if turnErr != nil {
		utils.HandleServiceError(c, turnErr)
		return
	}

	utils.RespondSuccess(c, ChatResponse{SessionID: req.SessionID, TurnReply: reply}, "Turn completed")
}

func (cc *ChatController) GetSessionHandler(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	items, err := cc.sessions.History(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if items == nil {
		items = []agent.Item{}
	}
	utils.RespondSuccess(c, SessionHistoryResponse{SessionID: id, Items: items}, "Fetched session successfully")
}

func (cc *ChatController) ResetSessionHandler(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	release, acquired := cc.locks.TryAcquire(id)
	if !acquired {
		utils.HandleServiceError(c, utils.ErrSessionBusy)
		return
	}
	defer release()

	if err := cc.sessions.Reset(c.Request.Context(), services.NewSession(id, nil)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, SessionHistoryResponse{SessionID: id, Items: []agent.Item{}}, "Session reset")
}

func (cc *ChatController) GuardrailStatsHandler(c *gin.Context) {
	stats, err := cc.guardrails.Stats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, stats, "Fetched guardrail stats successfully")
}

func sessionID(c *gin.Context) (string, bool) {
	id, err := canonicalSessionID(c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return "", false
	}
	return id, true
}

// canonicalSessionID accepts any form uuid.Parse does and returns the
// lower-case hyphenated form used as the storage key.
func canonicalSessionID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid session id", utils.ErrInvalidInput)
	}
	return id.String(), nil
}

func (cc *ChatController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/chat", cc.ChatHandler)

	sessions := api.Group("/sessions")
	sessions.GET("/:id", cc.GetSessionHandler)
	sessions.DELETE("/:id", cc.ResetSessionHandler)

	api.GET("/guardrails/stats", cc.GuardrailStatsHandler)
}
