package moex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

type issResponse struct {
	Marketdata struct {
		Columns []string        `json:"columns"`
		Data    [][]interface{} `json:"data"`
	} `json:"marketdata"`
}

func (c *Client) securitiesURL(secids []string) string {
	q := url.Values{}
	q.Set("iss.meta", "off")
	q.Set("iss.only", "marketdata")
	q.Set("marketdata.columns", "SECID,LAST")
	q.Set("securities", strings.Join(secids, ","))
	return fmt.Sprintf("%s/iss/engines/stock/markets/shares/boards/%s/securities.json?%s",
		c.baseURL, url.PathEscape(c.board), q.Encode())
}

// LastPrices returns the last trade price per security id. Securities with
// suspended trading (no LAST) are left out.
func (c *Client) LastPrices(ctx context.Context, secids []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(secids))
	if len(secids) == 0 {
		return prices, nil
	}
	sorted := append([]string(nil), secids...)
	sort.Strings(sorted)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.securitiesURL(sorted), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch last prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MOEX ISS returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var iss issResponse
	if err := json.Unmarshal(body, &iss); err != nil {
		return nil, fmt.Errorf("parse ISS response: %w", err)
	}

	secidCol, lastCol := -1, -1
	for i, col := range iss.Marketdata.Columns {
		switch col {
		case "SECID":
			secidCol = i
		case "LAST":
			lastCol = i
		}
	}
	if secidCol < 0 || lastCol < 0 {
		return nil, fmt.Errorf("ISS response lacks SECID/LAST columns")
	}

	for _, row := range iss.Marketdata.Data {
		if len(row) <= secidCol || len(row) <= lastCol {
			continue
		}
		secid, _ := row[secidCol].(string)
		if secid == "" {
			continue
		}
		last := toFloat64(row[lastCol])
		if last == 0 {
			continue
		}
		prices[secid] = last
	}

	c.logger.Debug("quotes fetched", "requested", len(secids), "priced", len(prices))
	return prices, nil
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
