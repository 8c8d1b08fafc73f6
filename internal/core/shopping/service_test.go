package shopping

import (
	"context"
	"errors"
	"testing"

	"meal-planner/internal/core/consolidate"
	"meal-planner/internal/core/pending"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItemSource struct {
	items []common.LineItem
	err   error
}

func (f *fakeItemSource) GetItems(ctx context.Context, eventID string) ([]common.LineItem, error) {
	return f.items, f.err
}

// ruleMerger 直接使用規則式合併，測試不經過模型
type ruleMerger struct{}

func (ruleMerger) MergeIngredients(ctx context.Context, items []common.LineItem) []common.MergedIngredient {
	return consolidate.MergeRuleBased(items)
}

type fakeEnricher struct {
	urls map[string]string
}

func (f *fakeEnricher) Enrich(ctx context.Context, names []string) map[string]string {
	return f.urls
}

type stubPersister struct{}

func (stubPersister) AddItemsBulk(ctx context.Context, eventID string, items []common.LineItem) error {
	return nil
}

func (stubPersister) GenerateShoppingList(ctx context.Context, eventID string) (*common.ShoppingListSnapshot, error) {
	return &common.ShoppingListSnapshot{EventID: eventID}, nil
}

func TestConsolidatedListMergesServerAndPendingItems(t *testing.T) {
	source := &fakeItemSource{items: []common.LineItem{
		{ID: "srv-1", Name: "Tomato", Quantity: 800, Unit: "g", Category: "vegetables", Source: common.SourceRecipe},
	}}
	store := pending.NewStore(stubPersister{})
	store.Add("event-1", common.LineItem{Name: "tomatoes", Quantity: 700, Unit: "g", Category: "vegetables"})

	svc := NewService(&config.Config{}, source, ruleMerger{}, nil, store)
	groups, err := svc.ConsolidatedList(context.Background(), "event-1")

	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)

	row := groups[0].Items[0]
	assert.Equal(t, float64(1500), row.Quantity)
	assert.Equal(t, 2, row.MergedCount)
	// 顯示數量換算成公斤
	assert.Equal(t, common.Quantity{Value: 1.5, Unit: "kg"}, row.Display)
}

func TestConsolidatedListTracksServerItemsForRemovalGuard(t *testing.T) {
	source := &fakeItemSource{items: []common.LineItem{
		{ID: "srv-1", Name: "Tomato", Quantity: 1, Unit: "piece", Source: common.SourceRecipe},
	}}
	store := pending.NewStore(stubPersister{})
	svc := NewService(&config.Config{}, source, ruleMerger{}, nil, store)

	_, err := svc.ConsolidatedList(context.Background(), "event-1")
	require.NoError(t, err)

	// 清單載入後，食譜項目的移除守衛立即生效
	err = store.Remove("event-1", "srv-1")
	assert.ErrorIs(t, err, common.ErrRecipeItemLocked)
}

func TestConsolidatedListSourceError(t *testing.T) {
	source := &fakeItemSource{err: errors.New("upstream unavailable")}
	svc := NewService(&config.Config{}, source, ruleMerger{}, nil, pending.NewStore(stubPersister{}))

	groups, err := svc.ConsolidatedList(context.Background(), "event-1")
	assert.Error(t, err)
	assert.Nil(t, groups)
}

func TestConsolidatedListEmpty(t *testing.T) {
	svc := NewService(&config.Config{}, &fakeItemSource{}, ruleMerger{}, nil, pending.NewStore(stubPersister{}))

	groups, err := svc.ConsolidatedList(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Nil(t, groups)
}

func TestConsolidatedListAttachesImages(t *testing.T) {
	source := &fakeItemSource{items: []common.LineItem{
		{ID: "srv-1", Name: "tomato", Quantity: 1, Unit: "piece", Category: "vegetables", Source: common.SourceRecipe},
	}}
	enricher := &fakeEnricher{urls: map[string]string{
		"fresh tomato": "https://img.example.com/tomato.jpg",
	}}
	svc := NewService(&config.Config{}, source, ruleMerger{}, enricher, pending.NewStore(stubPersister{}))

	groups, err := svc.ConsolidatedList(context.Background(), "event-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "https://img.example.com/tomato.jpg", groups[0].Items[0].ImageURL)
}
