package passes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"catalog-sync/core/database"
	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/catalog/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	t10 = "2024-05-01T10:00:00Z"
	t11 = "2024-05-01T11:00:00Z"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(db)
}

// fakeMarket serves mutable PvE/PvP datasets.
type fakeMarket struct {
	mu  sync.Mutex
	pve []remote.MarketItem
	pvp []remote.MarketItem
	err error
}

func (f *fakeMarket) set(pve, pvp []remote.MarketItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pve, f.pvp = pve, pvp
}

func (f *fakeMarket) AllItems(ctx context.Context, mode remote.Mode) ([]remote.MarketItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if mode == remote.ModePvE {
		return f.pve, nil
	}
	return f.pvp, nil
}

func marketItem(id, updated string, price int, tags ...string) remote.MarketItem {
	return remote.MarketItem{
		UID: "uid-" + id, BsgID: id, Name: "Item " + id, ShortName: id,
		Updated: updated, Price: intp(price), Tags: tags,
	}
}

func loadItem(t *testing.T, st *store.Store, externalID string) models.Item {
	t.Helper()
	var item models.Item
	require.NoError(t, st.DB().Where("external_id = ?", externalID).Take(&item).Error)
	return item
}

func itemTags(t *testing.T, st *store.Store, itemID uint) []string {
	t.Helper()
	var names []string
	require.NoError(t, st.DB().Table("item_tags").
		Joins("JOIN tags ON tags.id = item_tags.tag_id").
		Where("item_tags.item_id = ?", itemID).
		Pluck("tags.name", &names).Error)
	return names
}

func runPass(t *testing.T, p reconcile.Pass, force bool) *reconcile.Summary {
	t.Helper()
	summary := p.Run(context.Background(), reconcile.Options{Workers: 4, Force: force})
	require.NoError(t, summary.Err)
	return summary
}

func TestMetadata_FirstPopulationAndIdempotence(t *testing.T) {
	st := newTestStore(t)
	market := &fakeMarket{}
	market.set(
		[]remote.MarketItem{marketItem("a", t10, 100, "Meds"), marketItem("b", "", 200)},
		[]remote.MarketItem{marketItem("a", t10, 110, "Meds")},
	)
	pass := NewMetadata(market.AllItems, st)

	first := runPass(t, pass, false)
	assert.Equal(t, 2, first.Inserted, "never-seen ids are inserted, with or without timestamp")

	a := loadItem(t, st, "a")
	assert.Equal(t, 100, *a.Pve.Price)
	assert.Equal(t, 110, *a.Pvp.Price)
	assert.Equal(t, "uid-a", *a.MarketID)

	second := runPass(t, pass, false)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Updated, "b has no remote timestamp and is always stale")
	assert.Equal(t, 1, second.Unchanged, "a has equal timestamps")
}

func TestMetadata_CascadeReplaceAll(t *testing.T) {
	st := newTestStore(t)
	market := &fakeMarket{}
	pass := NewMetadata(market.AllItems, st)

	market.set([]remote.MarketItem{marketItem("a", t10, 1, "A", "B")}, nil)
	runPass(t, pass, false)

	market.set([]remote.MarketItem{marketItem("a", t11, 1, "B", "C", "C")}, nil)
	runPass(t, pass, false)

	item := loadItem(t, st, "a")
	assert.ElementsMatch(t, []string{"B", "C"}, itemTags(t, st, item.ID))
}

func TestMetadata_PartialJoinSafety(t *testing.T) {
	st := newTestStore(t)
	market := &fakeMarket{}
	pass := NewMetadata(market.AllItems, st)

	market.set(
		[]remote.MarketItem{marketItem("a", t10, 100)},
		[]remote.MarketItem{marketItem("a", t10, 500)},
	)
	runPass(t, pass, false)

	// Delisted from PvP: only the PvE side moves.
	market.set([]remote.MarketItem{marketItem("a", t11, 150)}, nil)
	summary := runPass(t, pass, false)
	assert.Equal(t, 1, summary.Updated)

	item := loadItem(t, st, "a")
	assert.Equal(t, 150, *item.Pve.Price)
	require.NotNil(t, item.Pvp.Price)
	assert.Equal(t, 500, *item.Pvp.Price, "pvp fields survive a partial join")
}

func TestMetadata_LabelDedup(t *testing.T) {
	st := newTestStore(t)
	market := &fakeMarket{}
	market.set([]remote.MarketItem{
		marketItem("a", t10, 1, "Meds"),
		marketItem("b", t10, 1, "Meds"),
		marketItem("c", t10, 1, "Meds", "Medkits"),
	}, nil)

	runPass(t, NewMetadata(market.AllItems, st), false)

	var meds int64
	st.DB().Model(&models.Tag{}).Where("name = ?", "Meds").Count(&meds)
	assert.Equal(t, int64(1), meds)

	var links int64
	st.DB().Model(&models.ItemTag{}).Count(&links)
	assert.Equal(t, int64(4), links)
}

func TestMetadata_KeylessAndFetchFailure(t *testing.T) {
	st := newTestStore(t)
	market := &fakeMarket{}
	market.set([]remote.MarketItem{marketItem("a", t10, 1), {UID: "no-bsg"}}, nil)
	pass := NewMetadata(market.AllItems, st)

	summary := runPass(t, pass, false)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Failed)

	market.err = errors.New("503")
	summary = pass.Run(context.Background(), reconcile.Options{})
	var fetchErr *reconcile.TransientFetchError
	assert.ErrorAs(t, summary.Err, &fetchErr)
	loadItem(t, st, "a")
}

func sellItem(id, updated string, offers ...remote.DevOffer) remote.DevSellItem {
	return remote.DevSellItem{ID: id, Updated: updated, SellFor: offers}
}

func offer(vendor string, price int, currency string, rub int) remote.DevOffer {
	o := remote.DevOffer{Price: price, Currency: currency, PriceRUB: rub}
	o.Vendor.Name = vendor
	return o
}

func seedIdentities(t *testing.T, st *store.Store, ids ...string) {
	t.Helper()
	items := make([]remote.DevItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, remote.DevItem{ID: id, Name: "Item " + id, ShortName: id, Updated: t10})
	}
	summary := runPass(t, NewIdentities(func(context.Context) ([]remote.DevItem, error) { return items, nil }, st), false)
	require.Equal(t, len(ids), summary.Inserted)
}

func TestPrices_PatchNotReplace(t *testing.T) {
	st := newTestStore(t)
	seedIdentities(t, st, "a")

	data := []remote.DevSellItem{sellItem("a", t10, offer("Therapist", 1000, "RUB", 1000), offer("Peacekeeper", 8, "USD", 1100))}
	pass := NewPrices(func(context.Context) ([]remote.DevSellItem, error) { return data, nil }, st)
	runPass(t, pass, false)

	var before models.ItemSale
	require.NoError(t, st.DB().Joins("JOIN vendors ON vendors.id = item_sales.vendor_id").
		Where("vendors.name = ?", "Therapist").Take(&before).Error)

	data = []remote.DevSellItem{sellItem("a", t11, offer("Therapist", 1200, "RUB", 1200))}
	summary := runPass(t, pass, false)
	assert.Equal(t, 1, summary.Updated)

	var after models.ItemSale
	require.NoError(t, st.DB().First(&after, before.ID).Error)
	assert.Equal(t, 1200, after.Price)
	assert.Equal(t, before.VendorID, after.VendorID)

	var count int64
	st.DB().Model(&models.ItemSale{}).Count(&count)
	assert.Equal(t, int64(2), count, "peacekeeper row kept")

	var pk models.ItemSale
	require.NoError(t, st.DB().Where("currency = ?", "USD").Take(&pk).Error)
	assert.Equal(t, 1100, pk.Price)
	assert.Equal(t, 8, pk.PriceOriginal)
}

func TestPrices_ForcedRefresh(t *testing.T) {
	st := newTestStore(t)
	seedIdentities(t, st, "a", "b", "c")

	data := []remote.DevSellItem{
		sellItem("a", t10, offer("Prapor", 10, "RUB", 10)),
		sellItem("b", t10, offer("Prapor", 20, "RUB", 20)),
		sellItem("c", t10, offer("Prapor", 30, "RUB", 30)),
	}
	pass := NewPrices(func(context.Context) ([]remote.DevSellItem, error) { return data, nil }, st)
	runPass(t, pass, false)

	unforced := runPass(t, pass, false)
	assert.Equal(t, 3, unforced.Unchanged)

	forced := runPass(t, pass, true)
	assert.True(t, forced.Forced)
	assert.Equal(t, 3, forced.Updated, "equal timestamps are rewritten when forced")
}

func TestPrices_UnknownItem(t *testing.T) {
	st := newTestStore(t)
	data := []remote.DevSellItem{sellItem("ghost", t10, offer("Prapor", 10, "RUB", 10))}

	summary := runPass(t, NewPrices(func(context.Context) ([]remote.DevSellItem, error) { return data, nil }, st), false)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "ghost", summary.Failures[0].ExternalID)

	var items int64
	st.DB().Model(&models.Item{}).Count(&items)
	assert.Zero(t, items, "prices never create items")
}

func TestKeys(t *testing.T) {
	st := newTestStore(t)
	seedIdentities(t, st, "key-1", "key-2")

	uses := 40
	keys := []remote.DevKey{
		{ID: "key-1", Updated: t10, Properties: &struct {
			Uses *int `json:"uses"`
		}{Uses: &uses}},
		{ID: "key-2", Updated: t10},
		{ID: "unknown", Updated: t10, Properties: &struct {
			Uses *int `json:"uses"`
		}{Uses: &uses}},
	}
	summary := runPass(t, NewKeys(func(context.Context) ([]remote.DevKey, error) { return keys, nil }, st), false)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Failed)

	var rows []models.Key
	require.NoError(t, st.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 40, rows[0].Uses)
}

func TestTypes(t *testing.T) {
	st := newTestStore(t)
	seedIdentities(t, st, "a")

	data := []remote.DevTypedItem{{ID: "a", Updated: t10, Types: []string{"keys", "barter"}}}
	pass := NewTypes(func(context.Context) ([]remote.DevTypedItem, error) { return data, nil }, st)
	runPass(t, pass, false)

	data = []remote.DevTypedItem{{ID: "a", Updated: t11, Types: []string{"barter"}}}
	runPass(t, pass, false)

	var names []string
	require.NoError(t, st.DB().Table("item_types").
		Joins("JOIN types ON types.id = item_types.type_id").
		Pluck("types.name", &names).Error)
	assert.Equal(t, []string{"barter"}, names)
}

func TestCursorsArePerPass(t *testing.T) {
	st := newTestStore(t)
	seedIdentities(t, st, "a")

	// The identities cursor does not make the metadata pass think a is fresh.
	market := &fakeMarket{}
	market.set([]remote.MarketItem{marketItem("a", t10, 100)}, nil)
	summary := runPass(t, NewMetadata(market.AllItems, st), false)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Inserted)
}

func TestAll(t *testing.T) {
	st := newTestStore(t)
	all := All(Fetchers{}, st)
	for _, name := range Order {
		require.Contains(t, all, name)
		assert.Equal(t, name, all[name].Name())
	}
}
