package imagesearch

import (
	"context"
	"fmt"
	"net/http"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// PexelsClient Pexels 圖庫查詢客戶端
type PexelsClient struct {
	config *config.Config
	client *resty.Client
}

// NewPexelsClient 創建圖庫查詢客戶端
func NewPexelsClient(cfg *config.Config) *PexelsClient {
	client := resty.New().
		SetBaseURL(cfg.ImageSearch.BaseURL).
		SetHeader("Authorization", cfg.ImageSearch.APIKey)

	return &PexelsClient{
		config: cfg,
		client: client,
	}
}

// LookupImage 查詢代表圖片，取搜尋結果第一張的中尺寸 URL
func (c *PexelsClient) LookupImage(ctx context.Context, query string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("per_page", "1").
		Get("/search")

	if err != nil {
		return "", fmt.Errorf("failed to search image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("image search returned error: %s", resp.Status())
	}

	var result struct {
		Photos []struct {
			Src struct {
				Medium string `json:"medium"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse image search response: %w", err)
	}

	if len(result.Photos) == 0 {
		return "", nil
	}
	return result.Photos[0].Src.Medium, nil
}
