package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePersister 測試用的後端儲存服務
type fakePersister struct {
	bulkCalls     int
	bulkErr       error
	savedItems    []common.LineItem
	generateCalls int
	generateErr   error
	snapshot      *common.ShoppingListSnapshot
}

func (f *fakePersister) AddItemsBulk(ctx context.Context, eventID string, items []common.LineItem) error {
	f.bulkCalls++
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.savedItems = append(f.savedItems, items...)
	return nil
}

func (f *fakePersister) GenerateShoppingList(ctx context.Context, eventID string) (*common.ShoppingListSnapshot, error) {
	f.generateCalls++
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.snapshot, nil
}

func TestAddAssignsIDAndManualSource(t *testing.T) {
	store := NewStore(&fakePersister{})

	item := store.Add("event-1", common.LineItem{
		Name:     "Apple",
		Quantity: 2,
		Unit:     "piece",
		Source:   common.SourceRecipe, // 呼叫端傳什麼都一樣
	})

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, common.SourceManual, item.Source)
	assert.Equal(t, StatePending, item.State)

	pending := store.Pending("event-1")
	require.Len(t, pending, 1)
	assert.Equal(t, "Apple", pending[0].Name)
}

func TestPendingIsolatedPerEvent(t *testing.T) {
	store := NewStore(&fakePersister{})
	store.Add("event-1", common.LineItem{Name: "Apple"})

	assert.Len(t, store.Pending("event-1"), 1)
	assert.Empty(t, store.Pending("event-2"))
}

func TestRemovePendingItem(t *testing.T) {
	store := NewStore(&fakePersister{})
	item := store.Add("event-1", common.LineItem{Name: "Apple"})

	require.NoError(t, store.Remove("event-1", item.ID))
	assert.Empty(t, store.Pending("event-1"))
}

func TestRemoveRejectsRecipeItem(t *testing.T) {
	store := NewStore(&fakePersister{})
	store.TrackServerItems("event-1", []common.LineItem{
		{ID: "srv-1", Name: "Tomato", Source: common.SourceRecipe},
	})

	err := store.Remove("event-1", "srv-1")
	assert.ErrorIs(t, err, common.ErrRecipeItemLocked)
}

func TestRemoveRejectsPersistedManualItem(t *testing.T) {
	store := NewStore(&fakePersister{})
	store.TrackServerItems("event-1", []common.LineItem{
		{ID: "srv-2", Name: "Apple", Source: common.SourceManual},
	})

	err := store.Remove("event-1", "srv-2")
	assert.ErrorIs(t, err, common.ErrPersistedItemFixed)
}

func TestRemoveUnknownItem(t *testing.T) {
	store := NewStore(&fakePersister{})
	err := store.Remove("event-1", "no-such-id")
	assert.ErrorIs(t, err, common.ErrPendingItemMissing)
}

// 批次建立失敗時 pending 完全不動，不會嘗試重建清單
func TestSaveAllBulkFailureKeepsPending(t *testing.T) {
	persister := &fakePersister{bulkErr: errors.New("connection refused")}
	store := NewStore(persister)
	store.Add("event-1", common.LineItem{Name: "Apple", Quantity: 2, Unit: "piece"})

	result, err := store.SaveAll(context.Background(), "event-1")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, persister.generateCalls)

	pending := store.Pending("event-1")
	require.Len(t, pending, 1)
	assert.Equal(t, "Apple", pending[0].Name)

	// 失敗後可以重試
	persister.bulkErr = nil
	result, err = store.SaveAll(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Empty(t, store.Pending("event-1"))
}

func TestSaveAllSuccess(t *testing.T) {
	snapshot := &common.ShoppingListSnapshot{
		EventID:     "event-1",
		Items:       []common.LineItem{{ID: "srv-1", Name: "Apple"}},
		GeneratedAt: time.Now(),
	}
	persister := &fakePersister{snapshot: snapshot}
	store := NewStore(persister)
	a := store.Add("event-1", common.LineItem{Name: "Apple"})
	store.Add("event-1", common.LineItem{Name: "Milk"})

	result, err := store.SaveAll(context.Background(), "event-1")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.False(t, result.Stale)
	assert.Equal(t, snapshot, result.Snapshot)
	assert.Len(t, persister.savedItems, 2)
	assert.Empty(t, store.Pending("event-1"))

	// 儲存成功後項目晉升為 persisted，不可再從本地移除
	err = store.Remove("event-1", a.ID)
	assert.ErrorIs(t, err, common.ErrPersistedItemFixed)
}

// 項目已落地但清單重建失敗：pending 仍要清空，結果標記為過期
func TestSaveAllRegenerateFailureStillClearsPending(t *testing.T) {
	persister := &fakePersister{generateErr: errors.New("timeout")}
	store := NewStore(persister)
	store.Add("event-1", common.LineItem{Name: "Apple"})

	result, err := store.SaveAll(context.Background(), "event-1")

	require.NoError(t, err)
	assert.True(t, result.Stale)
	assert.Nil(t, result.Snapshot)
	assert.Equal(t, 1, result.Saved)
	assert.Empty(t, store.Pending("event-1"))
}

func TestSaveAllNoPendingItems(t *testing.T) {
	store := NewStore(&fakePersister{})
	_, err := store.SaveAll(context.Background(), "event-1")
	assert.ErrorIs(t, err, common.ErrNoPendingItems)
}

// 同一事件同一時間只允許一個儲存作業在途
func TestSaveAllRejectsConcurrentSave(t *testing.T) {
	blocker := make(chan struct{})
	persister := &blockingPersister{
		entered: make(chan struct{}),
		unblock: blocker,
	}
	store := NewStore(persister)
	store.Add("event-1", common.LineItem{Name: "Apple"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.SaveAll(context.Background(), "event-1")
	}()

	<-persister.entered
	_, err := store.SaveAll(context.Background(), "event-1")
	assert.ErrorIs(t, err, common.ErrSaveInProgress)

	close(blocker)
	<-done
}

// 儲存在途時加入的項目不屬於本次快照，完成後必須還在 pending
func TestSaveAllKeepsItemsAddedDuringSave(t *testing.T) {
	persister := &blockingPersister{
		entered: make(chan struct{}),
		unblock: make(chan struct{}),
	}
	store := NewStore(persister)
	store.Add("event-1", common.LineItem{Name: "Apple"})

	var result *SaveResult
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, _ = store.SaveAll(context.Background(), "event-1")
	}()

	<-persister.entered
	banana := store.Add("event-1", common.LineItem{Name: "Banana"})
	close(persister.unblock)
	<-done

	require.NotNil(t, result)
	assert.Equal(t, 1, result.Saved)

	pending := store.Pending("event-1")
	require.Len(t, pending, 1)
	assert.Equal(t, banana.ID, pending[0].ID)

	// 快照內的項目已晉升，晚到的項目仍可移除
	assert.NoError(t, store.Remove("event-1", banana.ID))
}

// blockingPersister 讓 AddItemsBulk 卡住，用於驗證在途旗標
type blockingPersister struct {
	enteredOnce bool
	entered     chan struct{}
	unblock     chan struct{}
}

func (b *blockingPersister) AddItemsBulk(ctx context.Context, eventID string, items []common.LineItem) error {
	if !b.enteredOnce {
		b.enteredOnce = true
		close(b.entered)
	}
	<-b.unblock
	return nil
}

func (b *blockingPersister) GenerateShoppingList(ctx context.Context, eventID string) (*common.ShoppingListSnapshot, error) {
	return &common.ShoppingListSnapshot{EventID: eventID}, nil
}
