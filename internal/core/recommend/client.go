package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"meal-planner/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// Completer 定義合併推薦模型的介面
type Completer interface {
	// Complete 送出提示詞並取得模型回應內容
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenRouterClient OpenRouter 聊天補全客戶端
type OpenRouterClient struct {
	config *config.Config
	client *resty.Client
}

// NewOpenRouterClient 創建 OpenRouter 客戶端
func NewOpenRouterClient(cfg *config.Config) *OpenRouterClient {
	client := resty.New().
		SetBaseURL(cfg.Recommender.BaseURL).
		SetTimeout(cfg.Recommender.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Recommender.APIKey)).
		SetHeader("HTTP-Referer", "https://meal-planner.app").
		SetHeader("X-Title", "Meal Planner")

	return &OpenRouterClient{
		config: cfg,
		client: client,
	}
}

// Complete 送出提示詞並取得模型回應
func (s *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	// 構建請求
	req := map[string]interface{}{
		"model": s.config.Recommender.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": s.config.Recommender.MaxTokens,
	}

	// 發送請求
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to recommender: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("recommender API returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse recommender response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in recommender response")
	}

	return result.Choices[0].Message.Content, nil
}
