package feed

import (
	"strconv"
)

// Price key probe order, most specific first. Nested instrument records
// never carry a bare "price"; top-level frames sometimes do.
var (
	recordPriceKeys   = []string{"last_price", "ltp", "lastPrice"}
	topLevelPriceKeys = []string{"ltp", "last_price", "lastPrice", "price"}
)

// LTP is one extracted price observation.
type LTP struct {
	Price      float64
	SecurityID string
	Segment    string // segment bucket the price came from, "" for top-level frames
}

// ExtractLTP applies the ordered extraction rules to a decoded feed
// frame. It first scans the "data" envelope (or the object itself) for
// segment buckets holding instrument records keyed by security id, then
// falls back to top-level price and symbol fields. The first price found
// wins; ok is false when no rule matches.
func ExtractLTP(obj map[string]any) (LTP, bool) {
	payload := obj
	if data, isMap := obj["data"].(map[string]any); isMap {
		payload = data
	}

	for segment, v := range payload {
		bucket, isMap := v.(map[string]any)
		if !isMap {
			continue
		}
		for instID, rec := range bucket {
			info, isMap := rec.(map[string]any)
			if !isMap {
				continue
			}
			if price, ok := priceFromKeys(info, recordPriceKeys); ok {
				return LTP{Price: price, SecurityID: instID, Segment: segment}, true
			}
		}
	}

	price, ok := priceFromKeys(obj, topLevelPriceKeys)
	if !ok {
		return LTP{}, false
	}

	id := stringField(obj, "symbol")
	if id == "" {
		id = stringField(obj, "instrument")
	}
	return LTP{Price: price, SecurityID: id}, true
}

// PriceFromRecord probes a snapshot leaf record for a usable price. The
// snapshot endpoint may use any of the record keys plus bare "price".
func PriceFromRecord(rec map[string]any) (float64, bool) {
	if price, ok := priceFromKeys(rec, recordPriceKeys); ok {
		return price, true
	}
	return priceFromKeys(rec, []string{"price"})
}

func priceFromKeys(rec map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		v, present := rec[k]
		if !present || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringField(obj map[string]any, key string) string {
	switch x := obj[key].(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
