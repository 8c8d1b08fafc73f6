package persist

import (
	"context"
	"fmt"
	"net/http"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client 後端儲存服務客戶端
// 負責批次建立採買項目與重新產生權威清單，兩者都是可失敗的遠端呼叫
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建儲存服務客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Persistence.BaseURL).
		SetTimeout(cfg.Persistence.Timeout)
	if cfg.Persistence.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Persistence.APIKey))
	}

	return &Client{
		config: cfg,
		client: client,
	}
}

// AddItemsBulk 批次建立採買項目
func (c *Client) AddItemsBulk(ctx context.Context, eventID string, items []common.LineItem) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"items": items,
		}).
		Post(fmt.Sprintf("/api/v1/events/%s/shopping-items/bulk", eventID))

	if err != nil {
		return fmt.Errorf("failed to create shopping items: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("persistence service returned error: %s", resp.String())
	}
	return nil
}

// GenerateShoppingList 要求後端重新產生合併後的權威清單
func (c *Client) GenerateShoppingList(ctx context.Context, eventID string) (*common.ShoppingListSnapshot, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/v1/events/%s/shopping-list/generate", eventID))

	if err != nil {
		return nil, fmt.Errorf("failed to generate shopping list: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("persistence service returned error: %s", resp.String())
	}

	var snapshot common.ShoppingListSnapshot
	if err := common.ParseJSONBytes(resp.Body(), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse shopping list snapshot: %w", err)
	}
	return &snapshot, nil
}

// GetItems 取得事件目前已儲存的所有採買項目
func (c *Client) GetItems(ctx context.Context, eventID string) ([]common.LineItem, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/v1/events/%s/shopping-items", eventID))

	if err != nil {
		return nil, fmt.Errorf("failed to fetch shopping items: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("persistence service returned error: %s", resp.String())
	}

	var result struct {
		Items []common.LineItem `json:"items"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse shopping items: %w", err)
	}
	return result.Items, nil
}
