package remote

// Mode is a game mode dataset variant.
type Mode string

const (
	ModePvE Mode = "pve"
	ModePvP Mode = "pvp"
)

// MarketItem is one entry of the tarkov-market items/all payload.
// Numeric fields are pointers because the API omits or nulls them freely.
type MarketItem struct {
	UID            string   `json:"uid"`
	BsgID          string   `json:"bsgId"`
	Name           string   `json:"name"`
	ShortName      string   `json:"shortName"`
	Tags           []string `json:"tags"`
	BannedOnFlea   *bool    `json:"bannedOnFlea"`
	HaveMarketData *bool    `json:"haveMarketData"`
	Price          *int     `json:"price"`
	BasePrice      *int     `json:"basePrice"`
	Avg24hPrice    *int     `json:"avg24hPrice"`
	Avg7daysPrice  *int     `json:"avg7daysPrice"`
	TraderName     *string  `json:"traderName"`
	TraderPrice    *int     `json:"traderPrice"`
	TraderPriceCur *string  `json:"traderPriceCur"`
	TraderPriceRub *int     `json:"traderPriceRub"`
	Diff24h        *float64 `json:"diff24h"`
	Diff7days      *float64 `json:"diff7days"`
	Updated        string   `json:"updated"`
	Slots          *int     `json:"slots"`
	Icon           string   `json:"icon"`
	Link           string   `json:"link"`
	WikiLink       string   `json:"wikiLink"`
	Img            string   `json:"img"`
	ImgBig         string   `json:"imgBig"`
	IsFunctional   *bool    `json:"isFunctional"`
	Reference      string   `json:"reference"`
}

// DevItem is the identity view of a tarkov.dev item.
type DevItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Updated   string `json:"updated"`
}

// DevTypedItem carries the type labels of a tarkov.dev item.
type DevTypedItem struct {
	ID      string   `json:"id"`
	Updated string   `json:"updated"`
	Types   []string `json:"types"`
}

// DevKey is a key item with its uses counter.
type DevKey struct {
	ID         string `json:"id"`
	Updated    string `json:"updated"`
	Properties *struct {
		Uses *int `json:"uses"`
	} `json:"properties"`
}

// Uses returns the uses counter, ok=false when the item has no key properties.
func (k DevKey) Uses() (int, bool) {
	if k.Properties == nil || k.Properties.Uses == nil {
		return 0, false
	}
	return *k.Properties.Uses, true
}

// DevSellItem carries the vendor buy-back offers of a tarkov.dev item.
type DevSellItem struct {
	ID      string     `json:"id"`
	Updated string     `json:"updated"`
	SellFor []DevOffer `json:"sellFor"`
}

// DevOffer is one vendor offer.
type DevOffer struct {
	Vendor struct {
		Name string `json:"name"`
	} `json:"vendor"`
	Price    int    `json:"price"`
	Currency string `json:"currency"`
	PriceRUB int    `json:"priceRUB"`
}
