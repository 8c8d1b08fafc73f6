package shopping

import (
	"net/http"

	"meal-planner/internal/core/consolidate"
	"meal-planner/internal/core/pending"
	shoppingService "meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler 採買清單處理程序
type Handler struct {
	shoppingService *shoppingService.Service
	pendingStore    *pending.Store
}

// NewHandler 創建採買清單處理程序
func NewHandler(shoppingSvc *shoppingService.Service, pendingStore *pending.Store) *Handler {
	return &Handler{
		shoppingService: shoppingSvc,
		pendingStore:    pendingStore,
	}
}

// requestID 取得或補上請求 ID
func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
		c.Header("X-Request-ID", id)
	}
	return id
}

// respondError 統一錯誤響應
func respondError(c *gin.Context, err error) {
	if ce, ok := err.(*common.CustomError); ok {
		c.JSON(ce.Status, gin.H{
			"error": ce.Message,
			"code":  ce.Code,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  common.ErrCodeInternalError,
	})
}

// HandleList 取得整合後的採買清單
func (h *Handler) HandleList(c *gin.Context) {
	reqID := requestID(c)
	eventID := c.Param("event_id")

	common.LogInfo("開始處理採買清單請求",
		zap.String("request_id", reqID),
		zap.String("event_id", eventID),
	)

	groups, err := h.shoppingService.ConsolidatedList(c.Request.Context(), eventID)
	if err != nil {
		common.LogError("採買清單整合失敗",
			zap.Error(err),
			zap.String("request_id", reqID),
			zap.String("event_id", eventID),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load shopping list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":      eventID,
		"groups":        groups,
		"pending_count": len(h.pendingStore.Pending(eventID)),
	})
}

// AddItemRequest 新增待儲存項目的請求
type AddItemRequest struct {
	Name           string  `json:"name" binding:"required"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	EstimatedPrice float64 `json:"estimated_price"`
}

// HandleAddItem 新增待儲存項目，只寫記憶體，不碰後端
func (h *Handler) HandleAddItem(c *gin.Context) {
	reqID := requestID(c)
	eventID := c.Param("event_id")

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	category := req.Category
	if category == "" {
		category = consolidate.DefaultCategory(req.Name)
	}

	item := h.pendingStore.Add(eventID, common.LineItem{
		Name:           req.Name,
		Quantity:       req.Quantity,
		Unit:           consolidate.NormalizeUnit(req.Unit),
		Category:       category,
		EstimatedPrice: req.EstimatedPrice,
	})

	c.JSON(http.StatusCreated, gin.H{
		"item":          item,
		"pending_count": len(h.pendingStore.Pending(eventID)),
	})
}

// HandleRemoveItem 移除待儲存項目
// 食譜項目與已儲存項目會被拒絕並回傳說明
func (h *Handler) HandleRemoveItem(c *gin.Context) {
	reqID := requestID(c)
	eventID := c.Param("event_id")
	itemID := c.Param("item_id")

	if err := h.pendingStore.Remove(eventID, itemID); err != nil {
		common.LogWarn("移除項目被拒絕",
			zap.String("request_id", reqID),
			zap.String("event_id", eventID),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending_count": len(h.pendingStore.Pending(eventID)),
	})
}

// HandleSaveAll 批次儲存所有待儲存項目
func (h *Handler) HandleSaveAll(c *gin.Context) {
	reqID := requestID(c)
	eventID := c.Param("event_id")

	result, err := h.pendingStore.SaveAll(c.Request.Context(), eventID)
	if err != nil {
		common.LogError("批次儲存請求失敗",
			zap.Error(err),
			zap.String("request_id", reqID),
			zap.String("event_id", eventID),
		)
		respondError(c, err)
		return
	}

	response := gin.H{
		"saved": result.Saved,
		"stale": result.Stale,
	}
	if result.Stale {
		// 項目已儲存成功，但整合畫面可能過期，提示使用者重新整理
		response["warning"] = "items saved, but list regeneration failed; refresh to see merged totals"
	}
	if result.Snapshot != nil {
		response["snapshot"] = result.Snapshot
	}
	c.JSON(http.StatusOK, response)
}

// MergePreviewRequest 規則式合併預覽請求
type MergePreviewRequest struct {
	Items []common.LineItem `json:"items" binding:"required"`
}

// HandleMergePreview 規則式合併預覽，不經過 AI 也不碰任何狀態
func (h *Handler) HandleMergePreview(c *gin.Context) {
	reqID := requestID(c)

	var req MergePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	merged := consolidate.MergeRuleBased(req.Items)
	for i := range merged {
		merged[i].Display = consolidate.FormatSmartQuantity(merged[i].Quantity, merged[i].Unit)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  merged,
		"groups": consolidate.GroupByCategory(merged),
	})
}
