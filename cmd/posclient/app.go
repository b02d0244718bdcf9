package main

import (
	"context"
	"errors"
	"io"

	"pos-service/internal/clientconfig"
	"pos-service/internal/localstore"
	"pos-service/internal/state"
	"pos-service/internal/syncclient"
	"pos-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	tokenKey  = "auth.token"
	userIDKey = "auth.userId"
)

// app is everything a command needs, opened once per invocation
type app struct {
	configPath string

	cfg    *clientconfig.Config
	log    *zap.Logger
	store  *localstore.Store
	state  *state.State
	client *syncclient.Client
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := clientconfig.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.LogLevel, cfg.Env, zap.String("service", "posclient"))
	if err != nil {
		return err
	}
	a.log = log

	store, err := localstore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	a.store = store

	ctx := cmd.Context()
	a.state = state.New(store, nil)
	if err := a.state.Load(ctx); err != nil {
		return err
	}

	a.client = syncclient.New(syncclient.Config{
		BaseURL: cfg.ServerURL,
		StoreID: cfg.StoreID,
		Timeout: cfg.Timeout,
	}, store, log)
	token, ok, err := store.GetSetting(ctx, tokenKey)
	if err != nil {
		return err
	}
	if ok {
		a.client.SetToken(token)
	}
	return nil
}

func (a *app) close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// userID prefers the configured account and falls back to the last login
func (a *app) userID(ctx context.Context) (string, error) {
	if a.cfg.UserID != "" {
		return a.cfg.UserID, nil
	}
	id, ok, err := a.store.GetSetting(ctx, userIDKey)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		return "", errors.New("no account: run `posclient login` or set user_id")
	}
	return id, nil
}

func (a *app) saveSession(ctx context.Context, token, userID string) error {
	return a.store.WithTx(ctx, func(tx *localstore.Store) error {
		if err := tx.SetSetting(ctx, tokenKey, token); err != nil {
			return err
		}
		return tx.SetSetting(ctx, userIDKey, userID)
	})
}

// execute runs one command line and releases the local store afterwards
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "posclient",
		Short:             "Point-of-sale till with offline inventory and server sync",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./posclient.toml)")

	root.AddCommand(newAccountCmds(a)...)
	root.AddCommand(
		newSyncCmd(a),
		newProductsCmd(a),
		newSellCmd(a),
		newReturnCmd(a),
		newSalesCmd(a),
		newAlertsCmd(a),
		newOperatorsCmd(a),
		newStoresCmd(a),
		newFeedbackCmd(a),
	)
	return root
}
