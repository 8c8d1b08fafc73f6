package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Event 草稿變更通知
type Event struct {
	PlanID    string    `json:"plan_id"`
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrDraftNotFound 草稿不存在
var ErrDraftNotFound = fmt.Errorf("draft not found")

// Store 菜單草稿儲存
// 取代瀏覽器端輪詢 local storage 的做法：每個 key 單一寫入者，
// 變更透過 Redis pub/sub 發出明確通知，監看端不再輪詢
type Store struct {
	config *config.Config
	client *redis.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex // 每個 plan 的寫入鎖
}

// NewStore 創建草稿儲存
func NewStore(cfg *config.Config) (*Store, error) {
	if !cfg.Draft.Enabled {
		common.LogInfo("Draft store disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Draft.RedisAddr,
		Password: cfg.Draft.RedisPassword,
		DB:       cfg.Draft.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("草稿儲存已初始化",
		zap.String("redis_addr", cfg.Draft.RedisAddr),
		zap.Duration("ttl", cfg.Draft.TTL),
	)

	return &Store{
		config: cfg,
		client: client,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) writeLock(planID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[planID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[planID] = lock
	}
	return lock
}

func dataKey(planID string) string { return "draft:data:" + planID }

func revKey(planID string) string { return "draft:rev:" + planID }

func eventChannel(planID string) string { return "draft:events:" + planID }

// Save 儲存草稿並發出變更通知，回傳新的修訂版號
func (s *Store) Save(ctx context.Context, planID string, payload json.RawMessage) (int64, error) {
	lock := s.writeLock(planID)
	lock.Lock()
	defer lock.Unlock()

	revision, err := s.client.Incr(ctx, revKey(planID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump draft revision: %w", err)
	}

	if err := s.client.Set(ctx, dataKey(planID), []byte(payload), s.config.Draft.TTL).Err(); err != nil {
		return 0, fmt.Errorf("failed to save draft: %w", err)
	}

	event := Event{
		PlanID:    planID,
		Revision:  revision,
		UpdatedAt: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return revision, nil
	}
	if err := s.client.Publish(ctx, eventChannel(planID), data).Err(); err != nil {
		// 通知失敗不影響已寫入的草稿，監看端下次讀取仍拿得到新版
		common.LogWarn("草稿變更通知發送失敗",
			zap.String("plan_id", planID),
			zap.Error(err),
		)
	}

	common.LogInfo("草稿已儲存",
		zap.String("plan_id", planID),
		zap.Int64("revision", revision),
	)
	return revision, nil
}

// Load 讀取草稿與目前修訂版號
func (s *Store) Load(ctx context.Context, planID string) (json.RawMessage, int64, error) {
	data, err := s.client.Get(ctx, dataKey(planID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, 0, ErrDraftNotFound
		}
		return nil, 0, fmt.Errorf("failed to load draft: %w", err)
	}

	revision, err := s.client.Get(ctx, revKey(planID)).Int64()
	if err != nil && err != redis.Nil {
		return nil, 0, fmt.Errorf("failed to load draft revision: %w", err)
	}

	return json.RawMessage(data), revision, nil
}

// Watch 訂閱草稿變更通知，ctx 結束時自動退訂並關閉通道
func (s *Store) Watch(ctx context.Context, planID string) (<-chan Event, error) {
	pubsub := s.client.Subscribe(ctx, eventChannel(planID))

	// 確認訂閱建立
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe draft events: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					common.LogWarn("草稿通知解析失敗",
						zap.String("plan_id", planID),
						zap.Error(err),
					)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close 關閉草稿儲存
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
