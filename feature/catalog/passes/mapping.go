package passes

import (
	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/remote"
)

func pveSide(p Pair) *remote.MarketItem { return p.PvE }
func pvpSide(p Pair) *remote.MarketItem { return p.PvP }

// metadataMapping maps a market pair onto item columns. Mode fields of an absent
// side report "not present" so the stored values survive a partial join.
func metadataMapping() reconcile.Mapping[Pair] {
	primary := func(p Pair) *remote.MarketItem { return p.Primary() }
	str := func(column string, get func(*remote.MarketItem) string) reconcile.Field[Pair] {
		return reconcile.Optional(column, primary, get)
	}

	m := reconcile.Mapping[Pair]{
		str("market_id", func(m *remote.MarketItem) string { return m.UID }),
		str("name", func(m *remote.MarketItem) string { return m.Name }),
		str("short_name", func(m *remote.MarketItem) string { return m.ShortName }),
		str("icon", func(m *remote.MarketItem) string { return m.Icon }),
		str("link", func(m *remote.MarketItem) string { return m.Link }),
		str("wiki_link", func(m *remote.MarketItem) string { return m.WikiLink }),
		str("image_link", func(m *remote.MarketItem) string { return m.Img }),
		str("image_big_link", func(m *remote.MarketItem) string { return m.ImgBig }),
		str("reference", func(m *remote.MarketItem) string { return m.Reference }),
		reconcile.NonNil("banned_on_flea", func(p Pair) *bool { return optBool(p.Primary(), func(m *remote.MarketItem) *bool { return m.BannedOnFlea }) }),
		reconcile.NonNil("have_market_data", func(p Pair) *bool { return optBool(p.Primary(), func(m *remote.MarketItem) *bool { return m.HaveMarketData }) }),
		reconcile.NonNil("is_functional", func(p Pair) *bool { return optBool(p.Primary(), func(m *remote.MarketItem) *bool { return m.IsFunctional }) }),
		reconcile.NonNil("slots", func(p Pair) *int {
			if m := p.Primary(); m != nil {
				return m.Slots
			}
			return nil
		}),
	}
	m = append(m, modeFields("pve_", pveSide)...)
	m = append(m, modeFields("pvp_", pvpSide)...)
	return m
}

func modeFields(prefix string, side func(Pair) *remote.MarketItem) []reconcile.Field[Pair] {
	ints := func(column string, get func(*remote.MarketItem) *int) reconcile.Field[Pair] {
		return reconcile.Optional(prefix+column, side, get)
	}
	strs := func(column string, get func(*remote.MarketItem) *string) reconcile.Field[Pair] {
		return reconcile.Optional(prefix+column, side, get)
	}
	floats := func(column string, get func(*remote.MarketItem) *float64) reconcile.Field[Pair] {
		return reconcile.Optional(prefix+column, side, get)
	}

	return []reconcile.Field[Pair]{
		ints("price", func(m *remote.MarketItem) *int { return m.Price }),
		ints("base_price", func(m *remote.MarketItem) *int { return m.BasePrice }),
		ints("avg24h_price", func(m *remote.MarketItem) *int { return m.Avg24hPrice }),
		ints("avg7d_price", func(m *remote.MarketItem) *int { return m.Avg7daysPrice }),
		strs("trader_name", func(m *remote.MarketItem) *string { return m.TraderName }),
		ints("trader_price", func(m *remote.MarketItem) *int { return m.TraderPrice }),
		strs("trader_price_currency", func(m *remote.MarketItem) *string { return m.TraderPriceCur }),
		ints("trader_price_rub", func(m *remote.MarketItem) *int { return m.TraderPriceRub }),
		floats("diff24h", func(m *remote.MarketItem) *float64 { return m.Diff24h }),
		floats("diff7d", func(m *remote.MarketItem) *float64 { return m.Diff7days }),
	}
}

func optBool(m *remote.MarketItem, get func(*remote.MarketItem) *bool) *bool {
	if m == nil {
		return nil
	}
	return get(m)
}
