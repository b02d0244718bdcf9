package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"pos-service/internal/server"
	"pos-service/internal/state"
	"pos-service/pkg/config"
	"pos-service/pkg/database"
	"pos-service/prometheus"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) string {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	reg := prom.NewRegistry()
	srv := httptest.NewServer(server.New(server.Deps{
		Config: &config.Config{
			ServiceName: "pos-test",
			Server:      config.ServerConfig{CORSOrigins: []string{"*"}},
			JWT:         config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1},
		},
		DB:       db,
		Logger:   zap.NewNop(),
		Metrics:  prometheus.NewMetrics("test", reg),
		Gatherer: reg,
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "posclient.toml")
	body := fmt.Sprintf("server_url = %q\ndb_path = %q\nlog_level = \"error\"\n", srv.URL, filepath.Join(dir, "till.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), append([]string{"--config", cfgPath}, args...), &out, &out)
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	require.NoError(t, err, out)
	return out
}

func TestTillWorkflow(t *testing.T) {
	cfg := setup(t)

	out := mustRun(t, cfg, "register", "--email", "owner@shop.in", "--password", "s3cret-pass", "--name", "Owner")
	assert.Contains(t, out, "Registered owner@shop.in")

	mustRun(t, cfg, "products", "add", "--code", "8901", "--name", "Rice", "--qty", "10",
		"--price", "60", "--gst", "5", "--low-stock", "2")

	out = mustRun(t, cfg, "sell", "8901:2", "--customer", "Asha")
	assert.Contains(t, out, "Invoice INV000001")
	assert.Contains(t, out, "126.00")

	out = mustRun(t, cfg, "return", "INV000001")
	assert.Contains(t, out, "REMAINING")

	out = mustRun(t, cfg, "return", "INV000001", "8901:1", "--reason", "damaged")
	assert.Contains(t, out, "Refund 63.00")

	out = mustRun(t, cfg, "products", "list")
	assert.Contains(t, out, "Rice")
	assert.Contains(t, out, "9 pcs")

	out = mustRun(t, cfg, "sales")
	assert.Contains(t, out, "1 invoices")

	out = mustRun(t, cfg, "sync")
	assert.Contains(t, out, "Pushed 1 new")

	out = mustRun(t, cfg, "stores", "create", "--name", "Main Street")
	assert.Contains(t, out, "Created store Main Street")
	out = mustRun(t, cfg, "stores", "list")
	assert.Contains(t, out, "Main Street")

	mustRun(t, cfg, "feedback", "--rating", "5")
}

func TestOperatorsAndErrors(t *testing.T) {
	cfg := setup(t)

	mustRun(t, cfg, "products", "add", "--code", "tea", "--name", "Tea", "--qty", "1", "--price", "10")
	mustRun(t, cfg, "operators", "add", "c@shop.in", "--name", "Cashier", "--pin", "1234")

	out := mustRun(t, cfg, "operators", "list")
	assert.Contains(t, out, "c@shop.in")

	_, err := run(t, cfg, "sell", "tea", "--operator", "c@shop.in", "--pin", "0000")
	assert.ErrorIs(t, err, state.ErrInvalidCredentials)

	_, err = run(t, cfg, "sell", "tea:5")
	assert.ErrorIs(t, err, state.ErrInsufficientStock)

	_, err = run(t, cfg, "sell", "nothing")
	assert.ErrorIs(t, err, state.ErrProductNotFound)

	mustRun(t, cfg, "sell", "tea", "--operator", "c@shop.in", "--pin", "1234")

	out = mustRun(t, cfg, "alerts")
	assert.Contains(t, out, "LOW STOCK  Tea")

	// not signed in to the server yet
	_, err = run(t, cfg, "sync")
	assert.ErrorContains(t, err, "no account")

	_, err = run(t, cfg, "sync", "--push", "--pull")
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	ref, qty, err := parseLine("8901:3")
	require.NoError(t, err)
	assert.Equal(t, "8901", ref)
	assert.Equal(t, 3, qty)

	ref, qty, err = parseLine("8901")
	require.NoError(t, err)
	assert.Equal(t, "8901", ref)
	assert.Equal(t, 1, qty)

	_, _, err = parseLine("8901:0")
	assert.Error(t, err)
	_, _, err = parseLine(":2")
	assert.Error(t, err)
}
