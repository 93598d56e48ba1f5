package models

import (
	"time"

	"gorm.io/datatypes"
)

// ModePrices holds the per game mode market fields of an item.
// It is embedded twice into Item with the pve_ and pvp_ column prefixes.
type ModePrices struct {
	Price               *int     `gorm:"column:price"`
	BasePrice           *int     `gorm:"column:base_price"`
	Avg24hPrice         *int     `gorm:"column:avg24h_price"`
	Avg7dPrice          *int     `gorm:"column:avg7d_price"`
	TraderName          *string  `gorm:"column:trader_name;size:64"`
	TraderPrice         *int     `gorm:"column:trader_price"`
	TraderPriceCurrency *string  `gorm:"column:trader_price_currency;size:8"`
	TraderPriceRub      *int     `gorm:"column:trader_price_rub"`
	Diff24h             *float64 `gorm:"column:diff24h"`
	Diff7d              *float64 `gorm:"column:diff7d"`
}

// Item is a catalog entry keyed by its BSG id.
type Item struct {
	ID             uint       `gorm:"column:id;primaryKey"`
	ExternalID     string     `gorm:"column:external_id;size:64;not null;uniqueIndex"`
	MarketID       *string    `gorm:"column:market_id;size:64;index"`
	Name           string     `gorm:"column:name;size:255"`
	ShortName      string     `gorm:"column:short_name;size:128"`
	BannedOnFlea   *bool      `gorm:"column:banned_on_flea"`
	HaveMarketData *bool      `gorm:"column:have_market_data"`
	Slots          *int       `gorm:"column:slots"`
	Icon           string     `gorm:"column:icon;size:512"`
	Link           string     `gorm:"column:link;size:512"`
	WikiLink       string     `gorm:"column:wiki_link;size:512"`
	ImageLink      string     `gorm:"column:image_link;size:512"`
	ImageBigLink   string     `gorm:"column:image_big_link;size:512"`
	IsFunctional   *bool      `gorm:"column:is_functional"`
	Reference      string     `gorm:"column:reference;size:512"`
	Pve            ModePrices `gorm:"embedded;embeddedPrefix:pve_"`
	Pvp            ModePrices `gorm:"embedded;embeddedPrefix:pvp_"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (Item) TableName() string { return "items" }

// Tag is a deduplicated market tag label.
type Tag struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;size:128;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

// Type is a deduplicated item type label.
type Type struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;size:128;not null;uniqueIndex"`
}

func (Type) TableName() string { return "types" }

// Vendor is a deduplicated trader label.
type Vendor struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;size:128;not null;uniqueIndex"`
}

func (Vendor) TableName() string { return "vendors" }

// ItemTag links an item to a tag. Rows are replaced wholesale per item.
type ItemTag struct {
	ItemID uint `gorm:"column:item_id;primaryKey;autoIncrement:false"`
	TagID  uint `gorm:"column:tag_id;primaryKey;autoIncrement:false;index"`
}

func (ItemTag) TableName() string { return "item_tags" }

// ItemType links an item to a type. Rows are replaced wholesale per item.
type ItemType struct {
	ItemID uint `gorm:"column:item_id;primaryKey;autoIncrement:false"`
	TypeID uint `gorm:"column:type_id;primaryKey;autoIncrement:false;index"`
}

func (ItemType) TableName() string { return "item_types" }

// Key carries the uses counter of key items.
type Key struct {
	ID     uint `gorm:"column:id;primaryKey"`
	ItemID uint `gorm:"column:item_id;not null;uniqueIndex"`
	Uses   int  `gorm:"column:uses"`
}

func (Key) TableName() string { return "item_keys" }

// ItemSale is the buy-back offer of one vendor for one item. Patched in place.
type ItemSale struct {
	ID            uint      `gorm:"column:id;primaryKey"`
	ItemID        uint      `gorm:"column:item_id;not null;uniqueIndex:idx_item_sales_item_vendor"`
	VendorID      uint      `gorm:"column:vendor_id;not null;uniqueIndex:idx_item_sales_item_vendor"`
	Price         int       `gorm:"column:price"`
	Currency      string    `gorm:"column:currency;size:8"`
	PriceOriginal int       `gorm:"column:price_original"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ItemSale) TableName() string { return "item_sales" }

// SyncCursor is the last remote timestamp a pass applied to an item.
type SyncCursor struct {
	ID       uint      `gorm:"column:id;primaryKey"`
	ItemID   uint      `gorm:"column:item_id;not null;uniqueIndex:idx_sync_cursors_item_pass"`
	Pass     string    `gorm:"column:pass;size:32;not null;uniqueIndex:idx_sync_cursors_item_pass"`
	SyncedAt time.Time `gorm:"column:synced_at;not null"`
}

func (SyncCursor) TableName() string { return "sync_cursors" }

// SyncRun is the persisted summary of one executed pass.
type SyncRun struct {
	ID         uint           `gorm:"column:id;primaryKey" json:"-"`
	RunID      string         `gorm:"column:run_id;size:36;not null;index" json:"run_id"`
	Pass       string         `gorm:"column:pass;size:32;not null" json:"pass"`
	Forced     bool           `gorm:"column:forced" json:"forced"`
	StartedAt  time.Time      `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt time.Time      `gorm:"column:finished_at" json:"finished_at"`
	DurationMs int64          `gorm:"column:duration_ms" json:"duration_ms"`
	Total      int            `gorm:"column:total" json:"total"`
	Inserted   int            `gorm:"column:inserted" json:"inserted"`
	Updated    int            `gorm:"column:updated" json:"updated"`
	Unchanged  int            `gorm:"column:unchanged" json:"unchanged"`
	Failed     int            `gorm:"column:failed" json:"failed"`
	Error      string         `gorm:"column:error;size:1024" json:"error,omitempty"`
	Failures   datatypes.JSON `gorm:"column:failures" json:"failures"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// All returns every catalog model in migration order.
func All() []any {
	return []any{
		&Item{}, &Tag{}, &Type{}, &Vendor{},
		&ItemTag{}, &ItemType{}, &Key{}, &ItemSale{},
		&SyncCursor{}, &SyncRun{},
	}
}
