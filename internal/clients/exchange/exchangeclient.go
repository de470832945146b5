package exchange

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/laurenhquan/piggypal/internal/entity/currency"
)

const (
	latestPath  = "/latest"
	convertPath = "/convert"

	baseParam      = "base"
	fromParam      = "from"
	toParam        = "to"
	amountParam    = "amount"
	accessKeyParam = "access_key"
)

type config interface {
	BaseURL() string
	ApiKey() string
	Timeout() int64
}

// Client talks to an exchangerate.host style API. Every call is a fresh
// round trip; callers that want caching wrap the client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type apiErrorBody struct {
	Type string `json:"type"`
	Code string `json:"code"`
	Info string `json:"info"`
}

type ratesResponse struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Success   *bool              `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Error     *apiErrorBody      `json:"error"`
}

type convertResponse struct {
	Success *bool    `json:"success"`
	Date    string   `json:"date"`
	Result  *float64 `json:"result"`
	Info    struct {
		Rate *float64 `json:"rate"`
	} `json:"info"`
	Error *apiErrorBody `json:"error"`
}

// Conversion is the outcome of a single currency conversion: the unit
// rate that was applied and the converted amount.
type Conversion struct {
	Rate   decimal.Decimal
	Result decimal.Decimal
}

func New(config config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(config.Timeout()) * time.Second},
		baseURL:    config.BaseURL(),
		apiKey:     config.ApiKey(),
	}
}

// FetchRates returns the rate table for one base currency, keyed by
// target code.
func (c *Client) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if !currency.IsValid(base) {
		return nil, &BadRequestError{Reason: "invalid base currency " + base}
	}

	body, err := c.get(ctx, latestPath, map[string]string{baseParam: base})
	if err != nil {
		return nil, err
	}

	parsed := ratesResponse{}
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if parsed.Error != nil {
		return nil, &APIError{Message: parsed.Error.Info}
	}
	if parsed.Success != nil && !*parsed.Success {
		return nil, &APIError{}
	}
	if parsed.Rates == nil {
		return nil, &DecodeError{Err: errors.New("no rates in response")}
	}

	rates := make(map[string]decimal.Decimal, len(parsed.Rates))
	for code, rate := range parsed.Rates {
		rates[code] = decimal.NewFromFloat(rate)
	}
	return rates, nil
}

// ConvertOne converts a single amount. Equal currencies short-circuit
// to rate 1 without a network call.
func (c *Client) ConvertOne(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	if from == to {
		return Conversion{Rate: decimal.NewFromInt(1), Result: amount}, nil
	}
	if !currency.IsValid(from) || !currency.IsValid(to) {
		return Conversion{}, &BadRequestError{Reason: "invalid currency pair " + from + "/" + to}
	}

	body, err := c.get(ctx, convertPath, map[string]string{
		fromParam:   from,
		toParam:     to,
		amountParam: amount.String(),
	})
	if err != nil {
		return Conversion{}, err
	}

	parsed := convertResponse{}
	if err = json.Unmarshal(body, &parsed); err != nil {
		return Conversion{}, &DecodeError{Err: err}
	}
	if parsed.Error != nil {
		return Conversion{}, &APIError{Message: parsed.Error.Info}
	}
	if parsed.Success != nil && !*parsed.Success || parsed.Result == nil {
		return Conversion{}, &DecodeError{Err: errors.New("no result in response")}
	}

	result := decimal.NewFromFloat(*parsed.Result)
	var rate decimal.Decimal
	switch {
	case parsed.Info.Rate != nil:
		rate = decimal.NewFromFloat(*parsed.Info.Rate)
	case !amount.IsZero():
		rate = result.Div(amount)
	}
	return Conversion{Rate: rate, Result: result}, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &BadRequestError{Reason: err.Error()}
	}

	q := req.URL.Query()
	for name, value := range params {
		q.Add(name, value)
	}
	if c.apiKey != "" {
		q.Add(accessKeyParam, c.apiKey)
	}
	req.URL.RawQuery = q.Encode()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "exchange request")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPError{Code: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading exchange response")
	}
	return body, nil
}
