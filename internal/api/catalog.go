package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Header aliases observed across scrip-master revisions.
var (
	catalogSymbolColumns = []string{"SM_SYMBOL_NAME", "SYMBOL", "SYMBOL_NAME", "TRADING_SYMBOL"}
	catalogIDColumns     = []string{"SECURITY_ID", "SM_INSTRUMENT_ID", "EXCH_TOKEN"}
)

// FetchCatalog downloads the scrip-master CSV and returns security ids
// for the wanted symbols. The file is streamed row by row; only matches
// are retained. Satisfies instrument.CatalogSource.
func (c *Client) FetchCatalog(ctx context.Context, symbols []string) (map[string]string, error) {
	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	symbolCol := findColumn(header, catalogSymbolColumns)
	idCol := findColumn(header, catalogIDColumns)
	if symbolCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("catalog missing symbol or id column (header: %v)", header)
	}

	found := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		if symbolCol >= len(row) || idCol >= len(row) {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(row[symbolCol]))
		id := strings.TrimSpace(row[idCol])
		if symbol == "" || id == "" {
			continue
		}
		if _, ok := wanted[symbol]; !ok {
			continue
		}
		if _, dup := found[symbol]; dup {
			continue // first occurrence wins
		}
		found[symbol] = id

		if len(found) == len(wanted) {
			break
		}
	}

	c.logger.Info("catalog fetch complete",
		"wanted", len(wanted),
		"found", len(found),
	)
	return found, nil
}

func findColumn(header, aliases []string) int {
	for _, alias := range aliases {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), alias) {
				return i
			}
		}
	}
	return -1
}
