package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAccountLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateAccount("alice", "hash123")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	acct, err := db.GetAccountByUsername("alice")
	if err != nil || acct == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if acct.ID != id || acct.PassHash != "hash123" {
		t.Error("account row mismatch")
	}

	exists, _ := db.UsernameExists("alice")
	if !exists {
		t.Error("username should exist")
	}
	exists, _ = db.UsernameExists("bob")
	if exists {
		t.Error("unknown username should not exist")
	}

	missing, err := db.GetAccountByUsername("bob")
	if err != nil || missing != nil {
		t.Error("unknown lookup should return nil, nil")
	}

	if _, err := db.CreateAccount("alice", "other"); err == nil {
		t.Error("duplicate username should be rejected")
	}
}

func TestProfileStartsEmpty(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateAccount("alice", "h")

	p, err := db.GetProfile(id)
	if err != nil || p == nil {
		t.Fatalf("profile should exist after registration: %v", err)
	}
	if p.Coins != 0 || p.HighScore != 0 || len(p.OwnedSkins) != 0 {
		t.Error("fresh profile should be empty")
	}
}

func TestApplyResultAccumulates(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateAccount("alice", "h")

	db.ApplyResult(id, MatchResult{Score: 300, Kills: 2, Coins: 40, Died: true})
	db.ApplyResult(id, MatchResult{Score: 150, Kills: 1, Coins: 10, Died: true})

	p, _ := db.GetProfile(id)
	if p.Coins != 50 || p.TotalKills != 3 || p.TotalDeaths != 2 {
		t.Errorf("accumulation mismatch: %+v", p)
	}
	if p.HighScore != 300 {
		t.Errorf("high score is a max, got %d", p.HighScore)
	}
}

func TestApplyResultArenaPlacements(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateAccount("alice", "h")

	db.ApplyResult(id, MatchResult{Rank: 1, Arena: true})
	db.ApplyResult(id, MatchResult{Rank: 2, Arena: true})
	db.ApplyResult(id, MatchResult{Rank: 3, Arena: true})
	db.ApplyResult(id, MatchResult{Rank: 7, Arena: true})
	db.ApplyResult(id, MatchResult{Rank: 1, Arena: false}) // endless rank ignored

	p, _ := db.GetProfile(id)
	if p.ArenaWins != 1 || p.ArenaTop2 != 1 || p.ArenaTop3 != 1 {
		t.Errorf("placement counters mismatch: %+v", p)
	}
}

func TestPurchaseSkinTransaction(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateAccount("alice", "h")
	db.ApplyResult(id, MatchResult{Coins: 100})

	if _, err := db.PurchaseSkin(id, "skin_crimson", 150); err != ErrNotEnoughCoins {
		t.Errorf("expected ErrNotEnoughCoins, got %v", err)
	}

	left, err := db.PurchaseSkin(id, "skin_crimson", 50)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if left != 50 {
		t.Errorf("expected 50 coins left, got %d", left)
	}

	if _, err := db.PurchaseSkin(id, "skin_crimson", 50); err != ErrSkinOwned {
		t.Errorf("expected ErrSkinOwned, got %v", err)
	}

	p, _ := db.GetProfile(id)
	if len(p.OwnedSkins) != 1 || p.OwnedSkins[0] != "skin_crimson" {
		t.Errorf("owned skins mismatch: %v", p.OwnedSkins)
	}
}

func TestSettingsUpsert(t *testing.T) {
	db := openTestDB(t)

	if db.GetSetting("missing") != "" {
		t.Error("absent setting should be empty")
	}
	db.SetSetting("k", "v1")
	db.SetSetting("k", "v2")
	if got := db.GetSetting("k"); got != "v2" {
		t.Errorf("expected v2, got %q", got)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := openTestDB(t)
	a, _ := db.CreateAccount("alice", "h")
	b, _ := db.CreateAccount("bob", "h")
	c, _ := db.CreateAccount("carol", "h")
	db.ApplyResult(a, MatchResult{Score: 100})
	db.ApplyResult(b, MatchResult{Score: 900})
	db.ApplyResult(c, MatchResult{Score: 500})

	lb, err := db.GetLeaderboard(2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb) != 2 {
		t.Fatalf("limit not applied, got %d rows", len(lb))
	}
	if lb[0].Username != "bob" || lb[0].Rank != 1 {
		t.Errorf("expected bob first, got %+v", lb[0])
	}
	if lb[1].Username != "carol" || lb[1].Rank != 2 {
		t.Errorf("expected carol second, got %+v", lb[1])
	}
}
