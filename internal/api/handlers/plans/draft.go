package plans

import (
	"encoding/json"
	"io"
	"net/http"

	"meal-planner/internal/core/draft"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 菜單草稿處理程序
type Handler struct {
	store *draft.Store
}

// NewHandler 創建菜單草稿處理程序
func NewHandler(store *draft.Store) *Handler {
	return &Handler{
		store: store,
	}
}

// HandleSaveDraft 儲存菜單草稿並廣播變更通知
func (h *Handler) HandleSaveDraft(c *gin.Context) {
	planID := c.Param("plan_id")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Draft payload must be valid JSON"})
		return
	}

	revision, err := h.store.Save(c.Request.Context(), planID, json.RawMessage(body))
	if err != nil {
		common.LogError("草稿儲存失敗",
			zap.String("plan_id", planID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan_id":  planID,
		"revision": revision,
	})
}

// HandleGetDraft 讀取菜單草稿
func (h *Handler) HandleGetDraft(c *gin.Context) {
	planID := c.Param("plan_id")

	payload, revision, err := h.store.Load(c.Request.Context(), planID)
	if err != nil {
		if err == draft.ErrDraftNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
			return
		}
		common.LogError("草稿讀取失敗",
			zap.String("plan_id", planID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan_id":  planID,
		"revision": revision,
		"draft":    payload,
	})
}

// HandleWatchDraft 以 SSE 串流推送草稿變更通知
func (h *Handler) HandleWatchDraft(c *gin.Context) {
	planID := c.Param("plan_id")

	events, err := h.store.Watch(c.Request.Context(), planID)
	if err != nil {
		common.LogError("草稿監看訂閱失敗",
			zap.String("plan_id", planID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to watch draft"})
		return
	}

	common.LogInfo("草稿監看開始",
		zap.String("plan_id", planID),
	)

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("draft", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
