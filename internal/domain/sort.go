package domain

import "fmt"

// SortKey names the table column used for ordering.
type SortKey string

const (
	SortByMarketCap SortKey = "market_cap"
	SortByPrice     SortKey = "current_price"
	SortByChange24h SortKey = "price_change_percentage_24h"
	SortByVolume    SortKey = "total_volume"
	SortByName      SortKey = "name"
)

// SortKeys lists the keys in the order the dashboards offer them.
var SortKeys = []SortKey{SortByMarketCap, SortByPrice, SortByChange24h, SortByVolume, SortByName}

func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported sort key: %q", s)
}

// Next returns the key following k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortByMarketCap
}

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortAscending, SortDescending:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("unsupported sort order: %q", s)
	}
}

func (o SortOrder) Flip() SortOrder {
	if o == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// TableSort is the transient sort selection of a table view.
type TableSort struct {
	Key   SortKey
	Order SortOrder
}

// DefaultTableSort orders by market cap, largest first.
func DefaultTableSort() TableSort {
	return TableSort{Key: SortByMarketCap, Order: SortDescending}
}
