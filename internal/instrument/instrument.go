package instrument

import "strings"

// Segment identifies the exchange segment used in subscribe and poll
// payloads.
type Segment string

const (
	SegmentNSEEquity Segment = "NSE_EQ"
	SegmentNSEIndex  Segment = "NSE_INDEX"
	SegmentBSEIndex  Segment = "BSE_INDEX"
)

// Ref is a resolved instrument reference. Immutable once resolved.
type Ref struct {
	Symbol     string
	Segment    Segment
	SecurityID string
}

// Seed tables from the Dhan scrip master. The resolver extends the
// equities table at runtime via the catalog fallback.
var (
	seedEquities = map[string]string{
		"TATAMOTORS": "3456",
		"RELIANCE":   "2885",
		"TCS":        "11536",
	}

	seedNSEIndices = map[string]string{
		"NIFTY 50":   "13",
		"NIFTY":      "13",
		"NIFTY BANK": "25",
		"BANKNIFTY":  "25",
	}

	seedBSEIndices = map[string]string{
		"SENSEX": "51",
	}
)

// nseIndexAliases are the symbols that classify as NSE_INDEX. The alias
// set, not the id table, decides segment; both ingestion paths go through
// ClassifySegment so they can never disagree.
var nseIndexAliases = map[string]struct{}{
	"NIFTY":      {},
	"NIFTY 50":   {},
	"BANKNIFTY":  {},
	"NIFTY BANK": {},
}

// ClassifySegment returns the segment for a symbol.
func ClassifySegment(symbol string) Segment {
	s := normalize(symbol)
	if _, ok := nseIndexAliases[s]; ok {
		return SegmentNSEIndex
	}
	if s == "SENSEX" {
		return SegmentBSEIndex
	}
	return SegmentNSEEquity
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
