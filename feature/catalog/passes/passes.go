package passes

import (
	"context"
	"fmt"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/catalog/store"

	"gorm.io/gorm"
)

// Pass names, also used as cursor and run history keys.
const (
	Identities = "identities"
	Metadata   = "metadata"
	Types      = "types"
	Keys       = "keys"
	Prices     = "prices"
)

// Order is the startup sequence; later passes rely on rows earlier ones create.
var Order = []string{Identities, Metadata, Types, Keys, Prices}

// Fetchers are the remote calls the passes consume.
type Fetchers struct {
	Items      func(ctx context.Context) ([]remote.DevItem, error)
	Market     func(ctx context.Context, mode remote.Mode) ([]remote.MarketItem, error)
	ItemTypes  func(ctx context.Context) ([]remote.DevTypedItem, error)
	Keys       func(ctx context.Context) ([]remote.DevKey, error)
	SellPrices func(ctx context.Context) ([]remote.DevSellItem, error)
}

// NewFetchers binds the remote clients.
func NewFetchers(market *remote.MarketClient, dev *remote.DevClient) Fetchers {
	return Fetchers{
		Items:      dev.Items,
		Market:     market.AllItems,
		ItemTypes:  dev.ItemTypes,
		Keys:       dev.Keys,
		SellPrices: dev.SellPrices,
	}
}

// All builds every pass keyed by name.
func All(f Fetchers, st *store.Store) map[string]reconcile.Pass {
	return map[string]reconcile.Pass{
		Identities: NewIdentities(f.Items, st),
		Metadata:   NewMetadata(f.Market, st),
		Types:      NewTypes(f.ItemTypes, st),
		Keys:       NewKeys(f.Keys, st),
		Prices:     NewPrices(f.SellPrices, st),
	}
}

// NewIdentities creates items from the tarkov.dev identity list.
func NewIdentities(fetch func(ctx context.Context) ([]remote.DevItem, error), st *store.Store) *reconcile.Job[remote.DevItem] {
	return &reconcile.Job[remote.DevItem]{
		Reconciler: &reconcile.Reconciler[remote.DevItem]{
			Name:      Identities,
			Key:       func(it remote.DevItem) string { return it.ID },
			Timestamp: func(it remote.DevItem) string { return it.Updated },
			Mapping: reconcile.Mapping[remote.DevItem]{
				reconcile.Always("name", func(it remote.DevItem) string { return it.Name }),
				reconcile.Always("short_name", func(it remote.DevItem) string { return it.ShortName }),
			},
			Target: &itemTarget[remote.DevItem]{store: st, pass: Identities, create: true},
		},
		Fetch: fetch,
	}
}

// NewMetadata merges the PvE and PvP market datasets into items and their tags.
func NewMetadata(fetch func(ctx context.Context, mode remote.Mode) ([]remote.MarketItem, error), st *store.Store) *reconcile.Job[Pair] {
	return &reconcile.Job[Pair]{
		Reconciler: &reconcile.Reconciler[Pair]{
			Name:      Metadata,
			Key:       func(p Pair) string { return p.ID },
			Timestamp: func(p Pair) string { return p.Updated() },
			Mapping:   metadataMapping(),
			Target: &itemTarget[Pair]{
				store:  st,
				pass:   Metadata,
				create: true,
				prepare: func(ctx context.Context, p Pair) (cascadeFunc, error) {
					ids, err := st.Labels.Resolve(ctx, store.KindTag, p.Primary().Tags)
					if err != nil {
						return nil, err
					}
					return func(tx *gorm.DB, itemID uint) error {
						return store.ReplaceItemTags(tx, itemID, ids)
					}, nil
				},
			},
		},
		Fetch: func(ctx context.Context) ([]Pair, error) {
			pve, err := fetch(ctx, remote.ModePvE)
			if err != nil {
				return nil, err
			}
			pvp, err := fetch(ctx, remote.ModePvP)
			if err != nil {
				return nil, err
			}
			return Merge(pve, pvp), nil
		},
	}
}

// NewTypes replaces the type labels of known items.
func NewTypes(fetch func(ctx context.Context) ([]remote.DevTypedItem, error), st *store.Store) *reconcile.Job[remote.DevTypedItem] {
	return &reconcile.Job[remote.DevTypedItem]{
		Reconciler: &reconcile.Reconciler[remote.DevTypedItem]{
			Name:      Types,
			Key:       func(it remote.DevTypedItem) string { return it.ID },
			Timestamp: func(it remote.DevTypedItem) string { return it.Updated },
			Target: &itemTarget[remote.DevTypedItem]{
				store: st,
				pass:  Types,
				prepare: func(ctx context.Context, it remote.DevTypedItem) (cascadeFunc, error) {
					ids, err := st.Labels.Resolve(ctx, store.KindType, it.Types)
					if err != nil {
						return nil, err
					}
					return func(tx *gorm.DB, itemID uint) error {
						return store.ReplaceItemTypes(tx, itemID, ids)
					}, nil
				},
			},
		},
		Fetch: fetch,
	}
}

// NewKeys writes the uses counter of known key items.
func NewKeys(fetch func(ctx context.Context) ([]remote.DevKey, error), st *store.Store) *reconcile.Job[remote.DevKey] {
	return &reconcile.Job[remote.DevKey]{
		Reconciler: &reconcile.Reconciler[remote.DevKey]{
			Name:      Keys,
			Key:       func(k remote.DevKey) string { return k.ID },
			Timestamp: func(k remote.DevKey) string { return k.Updated },
			Target: &itemTarget[remote.DevKey]{
				store: st,
				pass:  Keys,
				prepare: func(ctx context.Context, k remote.DevKey) (cascadeFunc, error) {
					uses, ok := k.Uses()
					if !ok {
						return nil, fmt.Errorf("key %s has no uses property", k.ID)
					}
					return func(tx *gorm.DB, itemID uint) error {
						return store.UpsertKeyUses(tx, itemID, uses)
					}, nil
				},
			},
		},
		Fetch: fetch,
	}
}

// NewPrices patches the vendor buy-back offers of known items.
func NewPrices(fetch func(ctx context.Context) ([]remote.DevSellItem, error), st *store.Store) *reconcile.Job[remote.DevSellItem] {
	return &reconcile.Job[remote.DevSellItem]{
		Reconciler: &reconcile.Reconciler[remote.DevSellItem]{
			Name:      Prices,
			Key:       func(it remote.DevSellItem) string { return it.ID },
			Timestamp: func(it remote.DevSellItem) string { return it.Updated },
			Target: &itemTarget[remote.DevSellItem]{
				store: st,
				pass:  Prices,
				prepare: func(ctx context.Context, it remote.DevSellItem) (cascadeFunc, error) {
					sales, err := resolveSales(ctx, st.Labels, it.SellFor)
					if err != nil {
						return nil, err
					}
					return func(tx *gorm.DB, itemID uint) error {
						_, err := store.PatchSales(tx, itemID, sales)
						return err
					}, nil
				},
			},
		},
		Fetch: fetch,
	}
}

func resolveSales(ctx context.Context, labels *store.Labels, offers []remote.DevOffer) ([]store.Sale, error) {
	sales := make([]store.Sale, 0, len(offers))
	for _, o := range offers {
		if o.Vendor.Name == "" {
			continue
		}
		vendorID, err := labels.FindOrCreate(ctx, store.KindVendor, o.Vendor.Name)
		if err != nil {
			return nil, err
		}
		sales = append(sales, store.Sale{
			VendorID:      vendorID,
			Price:         o.PriceRUB,
			Currency:      o.Currency,
			PriceOriginal: o.Price,
		})
	}
	return sales, nil
}
