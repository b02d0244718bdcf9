// Package syncclient pushes a device's records to the sync server and pulls
// remote changes back into the local store.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"pos-service/internal/localstore"
	"pos-service/pkg/syncapi"

	"go.uber.org/zap"
)

const (
	DefaultTimeout    = 30 * time.Second
	watermarkKeyBase  = "sync.lastSyncAt."
	storageUnavailMsg = "Local storage is not initialized"
)

// Result reports a sync operation to the user. Failures never surface as Go errors.
type Result struct {
	Success  bool
	Message  string
	Pushed   *syncapi.PushResults
	Pulled   *PullStats
	SyncedAt time.Time
}

// PullStats counts what a pull wrote locally
type PullStats struct {
	Products        int
	Transactions    int
	ProductsSkipped int
	Conflicts       int
}

type Config struct {
	BaseURL string
	StoreID string
	Timeout time.Duration
}

// Client talks to one sync server on behalf of one local store
type Client struct {
	BaseURL    string
	StoreID    string
	HTTPClient *http.Client
	Logger     *zap.Logger

	store *localstore.Store

	mu    sync.RWMutex
	token string
}

func New(cfg Config, store *localstore.Store, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		StoreID:    cfg.StoreID,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
		store:      store,
	}
}

// SetToken sets the bearer token sent with sync requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges account credentials for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*syncapi.AuthResponse, error) {
	var resp syncapi.AuthResponse
	if err := c.post(ctx, "/api/auth/login", syncapi.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	c.Logger.Info("Logged in to sync server", zap.String("user_id", resp.User.ID))
	return &resp, nil
}

// Register creates a server account and keeps its token
func (c *Client) Register(ctx context.Context, req syncapi.RegisterRequest) (*syncapi.AuthResponse, error) {
	var resp syncapi.AuthResponse
	if err := c.post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// ListStores returns the stores registered for userID
func (c *Client) ListStores(ctx context.Context, userID string) ([]syncapi.Store, error) {
	var resp syncapi.StoresResponse
	if err := c.call(ctx, http.MethodGet, "/api/stores/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stores, nil
}

func (c *Client) CreateStore(ctx context.Context, req syncapi.CreateStoreRequest) (*syncapi.Store, error) {
	var resp syncapi.StoreResponse
	if err := c.post(ctx, "/api/stores", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Store, nil
}

// SendFeedback submits a rating and message for the signed-in account
func (c *Client) SendFeedback(ctx context.Context, req syncapi.FeedbackRequest) error {
	return c.post(ctx, "/api/feedback", req, nil)
}

// WatermarkKey is the settings key holding the user's last successful pull
func WatermarkKey(userID string) string {
	return watermarkKeyBase + userID
}

// LastSyncAt returns the stored watermark, nil before the first pull
func (c *Client) LastSyncAt(ctx context.Context, userID string) (*time.Time, error) {
	v, ok, err := c.store.GetSetting(ctx, WatermarkKey(userID))
	if err != nil || !ok {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, fmt.Errorf("corrupt sync watermark %q: %w", v, err)
	}
	return &t, nil
}

// Pull fetches records changed since the watermark and writes them locally.
// Products are only overwritten when the remote copy is not older. The
// watermark advances to the server's syncedAt once everything is written.
func (c *Client) Pull(ctx context.Context, userID string) Result {
	log := c.Logger.With(zap.String("user_id", userID), zap.String("op", "pull"))

	since, err := c.LastSyncAt(ctx, userID)
	if err != nil {
		return c.fail(log, "Failed to read sync state", err)
	}

	var resp syncapi.PullResponse
	req := syncapi.PullRequest{UserID: userID, LastSyncAt: since, StoreID: c.StoreID}
	if err := c.post(ctx, "/api/sync/pull", req, &resp); err != nil {
		return c.fail(log, "Pull failed", err)
	}

	stats := PullStats{}
	err = c.store.WithTx(ctx, func(tx *localstore.Store) error {
		for _, rp := range resp.Products {
			local, err := tx.GetProduct(ctx, rp.ID)
			if err != nil && !errors.Is(err, localstore.ErrNotFound) {
				return err
			}
			if local != nil && local.UpdatedAt.After(rp.UpdatedAt) {
				stats.ProductsSkipped++
				continue
			}
			p := localstore.ProductFromAPI(rp)
			if err := tx.SaveProduct(ctx, &p); err != nil {
				return err
			}
			stats.Products++
		}

		for _, rt := range resp.Transactions {
			local, err := tx.GetTransaction(ctx, rt.ID)
			if err != nil && !errors.Is(err, localstore.ErrNotFound) {
				return err
			}
			if local != nil && local.UpdatedAt.After(rt.UpdatedAt) {
				continue
			}
			t := localstore.TransactionFromAPI(rt)
			err = tx.SaveTransaction(ctx, &t)
			if errors.Is(err, localstore.ErrDuplicate) {
				// same invoice number under another id, kept as is locally
				log.Warn("Invoice number conflict on pull",
					zap.String("invoice_number", rt.InvoiceNumber),
					zap.String("transaction_id", rt.ID))
				stats.Conflicts++
				continue
			}
			if err != nil {
				return err
			}
			stats.Transactions++
		}

		return tx.SetSetting(ctx, WatermarkKey(userID), syncapi.Timestamp(resp.SyncedAt).Format(time.RFC3339Nano))
	})
	if err != nil {
		return c.fail(log, "Failed to store pulled records", err)
	}

	log.Info("Pull completed",
		zap.Int("products", stats.Products),
		zap.Int("products_skipped", stats.ProductsSkipped),
		zap.Int("transactions", stats.Transactions),
		zap.Int("conflicts", stats.Conflicts))

	return Result{
		Success:  true,
		Message:  fmt.Sprintf("Pulled %d products and %d transactions", stats.Products, stats.Transactions),
		Pulled:   &stats,
		SyncedAt: resp.SyncedAt,
	}
}

// Push submits every local product and transaction; the server decides
// what is new. The watermark is left alone.
func (c *Client) Push(ctx context.Context, userID string) Result {
	log := c.Logger.With(zap.String("user_id", userID), zap.String("op", "push"))

	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return c.fail(log, "Failed to read local products", err)
	}
	txns, err := c.store.ListTransactions(ctx)
	if err != nil {
		return c.fail(log, "Failed to read local transactions", err)
	}

	req := syncapi.PushRequest{
		UserID:       userID,
		StoreID:      c.StoreID,
		Products:     make([]syncapi.Product, 0, len(products)),
		Transactions: make([]syncapi.Transaction, 0, len(txns)),
	}
	for _, p := range products {
		req.Products = append(req.Products, p.ToAPI())
	}
	for _, t := range txns {
		req.Transactions = append(req.Transactions, t.ToAPI())
	}

	var resp syncapi.PushResponse
	if err := c.post(ctx, "/api/sync/push", req, &resp); err != nil {
		return c.fail(log, "Push failed", err)
	}
	if !resp.Success {
		return c.fail(log, "Push failed", errors.New("server reported failure"))
	}

	r := resp.Results
	log.Info("Push completed",
		zap.Int("products_created", r.ProductsCreated),
		zap.Int("products_updated", r.ProductsUpdated),
		zap.Int("transactions_created", r.TransactionsCreated))

	return Result{
		Success: true,
		Message: fmt.Sprintf("Pushed %d new and %d updated products, %d new transactions",
			r.ProductsCreated, r.ProductsUpdated, r.TransactionsCreated),
		Pushed:   &r,
		SyncedAt: resp.SyncedAt,
	}
}

// BidirectionalSync pushes then pulls. A failed push skips the pull so no
// local-only record can be overwritten before it reached the server.
func (c *Client) BidirectionalSync(ctx context.Context, userID string) Result {
	pushed := c.Push(ctx, userID)
	if !pushed.Success {
		return pushed
	}

	pulled := c.Pull(ctx, userID)
	pulled.Pushed = pushed.Pushed
	if pulled.Success {
		pulled.Message = pushed.Message + "; " + pulled.Message
	}
	return pulled
}

func (c *Client) fail(log *zap.Logger, msg string, err error) Result {
	if errors.Is(err, localstore.ErrNotInitialized) {
		log.Error(storageUnavailMsg, zap.Error(err))
		return Result{Success: false, Message: storageUnavailMsg}
	}
	log.Error(msg, zap.Error(err))
	return Result{Success: false, Message: msg + ": " + err.Error()}
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.call(ctx, http.MethodPost, path, body, out)
}

// call sends body as JSON when given and decodes a 2xx reply into out
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.Logger.Debug("Making API call", zap.String("method", method), zap.String("path", path))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp syncapi.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("invalid server response: %w", err)
	}
	return nil
}
