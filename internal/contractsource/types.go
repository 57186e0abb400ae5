package contractsource

// rawMarket mirrors one entry from the contract source's open-markets
// listing. The yes_sub_title field names the side a given ticker's YES
// resolves for — the detail needed to pair two per-side tickers into one
// ContractGame.
type rawMarket struct {
	Ticker       string  `json:"ticker"`
	EventTicker  string  `json:"event_ticker"`
	SeriesTicker string  `json:"series_ticker"`
	Title        string  `json:"title"`
	YesSubTitle  string  `json:"yes_sub_title"`
	YesBid       int     `json:"yes_bid"`
	YesAsk       int     `json:"yes_ask"`
	Volume24h    float64 `json:"volume_24h"`
	CloseTime    string  `json:"close_time"`
}
