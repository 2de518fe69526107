package moex

import (
	"net/http"
	"strings"
	"time"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/logger"
)

// Client reads last trade prices from the MOEX ISS API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	board      string
	logger     *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.QuotesTimeout()},
		baseURL:    strings.TrimRight(cfg.Quotes.BaseURL, "/"),
		board:      cfg.Quotes.Board,
		logger:     log,
	}
}

func newClientWithHTTP(hc *http.Client, baseURL, board string, log *logger.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: hc, baseURL: strings.TrimRight(baseURL, "/"), board: board, logger: log}
}
