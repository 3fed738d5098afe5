package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"AutoCompound/internal/contracts"
)

const testConfig = `
rpc_url: http://127.0.0.1:1
private_key: 4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318
interval_hours: 1
gas_limit: 300000
harvest:
  - contract: Booster
    pools: [1]
restake:
  enabled: true
  stake_pool: 1
  stages:
    - token: LATTE
      contract: DripBar
`

// clearEnv blanks every override the config loader reads so ambient
// settings cannot change startup behaviour under test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RPC_URL", "PRIVATE_KEY", "ADDRESS_BOOK", "INTERVAL_HR", "GAS_TOPUP", "GAS_LIMIT",
		"STAKE_POOL", "REINVEST_POOL", "REFERRAL", "OVERLAP_POLICY",
		"ENABLE_RESTAKE", "ENABLE_UNWRAP", "PROVIDE_LIQUIDITY", "BOOSTER_POOLS",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func writeFiles(t *testing.T, addresses string) string {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	book := filepath.Join(dir, "addresses.json")
	if err := os.WriteFile(book, []byte(addresses), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfg, []byte(testConfig+"address_book: "+book+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRun_MissingAddressExitsWithStartupFailure(t *testing.T) {
	// DripBar is missing from the address book.
	cfg := writeFiles(t, `{"Booster": "0x0000000000000000000000000000000000000001", "LATTE": "0x0000000000000000000000000000000000000002"}`)

	if code := run(context.Background(), cfg); code != exitStartupFailure {
		t.Fatalf("expected exit status %d, got %d", exitStartupFailure, code)
	}

	_, _, err := prepare(cfg)
	if !errors.Is(err, contracts.ErrUnknownContract) {
		t.Errorf("expected ErrUnknownContract, got %v", err)
	}
}

func TestRun_InvalidConfigExitsWithStartupFailure(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("rpc_url: [unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if code := run(context.Background(), path); code != exitStartupFailure {
		t.Fatalf("expected exit status %d, got %d", exitStartupFailure, code)
	}
}

func TestRun_UnreachableRPCExitsWithStartupFailure(t *testing.T) {
	cfg := writeFiles(t, `{
  "Booster": "0x0000000000000000000000000000000000000001",
  "LATTE": "0x0000000000000000000000000000000000000002",
  "DripBar": "0x0000000000000000000000000000000000000003"
}`)
	if code := run(context.Background(), cfg); code != exitStartupFailure {
		t.Fatalf("expected exit status %d, got %d", exitStartupFailure, code)
	}
}

func TestPrepare_IgnoresBlankedAmbientEnv(t *testing.T) {
	cfg := writeFiles(t, `{"Booster": "0x0000000000000000000000000000000000000001", "LATTE": "0x0000000000000000000000000000000000000002", "DripBar": "0x0000000000000000000000000000000000000003"}`)
	t.Setenv("BOOSTER_POOLS", "not-a-number")
	if _, _, err := prepare(cfg); err == nil {
		t.Fatal("expected a BOOSTER_POOLS override to reach the plan")
	}
	t.Setenv("BOOSTER_POOLS", "")
	if _, _, err := prepare(cfg); err != nil {
		t.Fatalf("prepare with cleared env: %v", err)
	}
}

func TestPrepare_Valid(t *testing.T) {
	cfg := writeFiles(t, `{"Booster": "0x0000000000000000000000000000000000000001", "LATTE": "0x0000000000000000000000000000000000000002", "DripBar": "0x0000000000000000000000000000000000000003"}`)
	c, plan, err := prepare(cfg)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if plan == nil || c.IntervalHours != 1 {
		t.Errorf("unexpected result %+v %v", c, plan)
	}
}
