package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"arena-archive/internal/config"

	"github.com/valyala/fasthttp"
)

// Client talks to the game federation API and the NFT index API.
type Client struct {
	gameBase     string
	nftIndexBase string
	nftIndexKey  string
	contract     string
	client       *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		gameBase:     cfg.GameAPIBase,
		nftIndexBase: cfg.NFTIndexAPIBase,
		nftIndexKey:  cfg.NFTIndexAPIKey,
		contract:     cfg.ContractAddress,
		client: &fasthttp.Client{
			MaxConnsPerHost:     256,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// StatusError is a non-2xx upstream response. Other than 404 it is
// transient and worth retrying.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

func (e *StatusError) NotFound() bool {
	return e.Code == fasthttp.StatusNotFound
}

// DecodeError is a successful response whose body does not match the
// expected shape. Retrying will not help.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (c *Client) GetFighter(ctx context.Context, id int64) (*FighterResponse, error) {
	url := fmt.Sprintf("%s/champions/id/%d", c.gameBase, id)
	return doRequest[FighterResponse](ctx, c, url)
}

func (c *Client) GetTournamentPage(ctx context.Context, pageSize, pageIndex int) (*TournamentPage, error) {
	url := fmt.Sprintf("%s/tournaments?page_size=%d&page_index=%d", c.gameBase, pageSize, pageIndex)
	return doRequest[TournamentPage](ctx, c, url)
}

func (c *Client) GetBattleDetail(ctx context.Context, serviceID int, tournamentID int64) (*BattleDetail, error) {
	url := fmt.Sprintf("%s/battles/service/%d/tournament/%d", c.gameBase, serviceID, tournamentID)
	return doRequest[BattleDetail](ctx, c, url)
}

func (c *Client) GetCollectionPage(ctx context.Context, startToken int64) (*CollectionPage, error) {
	url := fmt.Sprintf("%s/%s/getNFTsForCollection?contractAddress=%s&withMetadata=false&startToken=%d",
		c.nftIndexBase, c.nftIndexKey, c.contract, startToken)
	return doRequest[CollectionPage](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &result, nil
}

// CollectionPage is one page of the NFT index listing, used only to
// bound-search the maximum minted fighter id.
type CollectionPage struct {
	NFTs      []json.RawMessage `json:"nfts"`
	NextToken string            `json:"next_token"`
}
