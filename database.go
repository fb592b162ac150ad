package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection
type DB struct {
	conn *sql.DB
}

// AccountRow is a registered account
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// ProfileRow is an account's persistent progression
type ProfileRow struct {
	AccountID    int64
	Coins        int
	HighScore    int
	TotalKills   int
	TotalDeaths  int
	ArenaWins    int
	ArenaTop2    int
	ArenaTop3    int
	EquippedSkin string
	OwnedSkins   []string
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for concurrent readers alongside the profile writer
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		account_id INTEGER PRIMARY KEY REFERENCES accounts(id),
		coins INTEGER NOT NULL DEFAULT 0,
		high_score INTEGER NOT NULL DEFAULT 0,
		total_kills INTEGER NOT NULL DEFAULT 0,
		total_deaths INTEGER NOT NULL DEFAULT 0,
		arena_wins INTEGER NOT NULL DEFAULT 0,
		arena_top2 INTEGER NOT NULL DEFAULT 0,
		arena_top3 INTEGER NOT NULL DEFAULT 0,
		equipped_skin TEXT NOT NULL DEFAULT '',
		owned_skins TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
	CREATE INDEX IF NOT EXISTS idx_profiles_high_score ON profiles(high_score);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// CreateAccount creates a new account with an empty profile
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO profiles (account_id) VALUES (?)", id)
	return id, err
}

// GetAccountByUsername returns an account by username, nil when absent
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?",
		username,
	)
	a := &AccountRow{}
	err := row.Scan(&a.ID, &a.Username, &a.PassHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// UsernameExists checks whether a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetProfile returns an account's profile, nil when absent
func (db *DB) GetProfile(accountID int64) (*ProfileRow, error) {
	row := db.conn.QueryRow(`
		SELECT account_id, coins, high_score, total_kills, total_deaths,
		       arena_wins, arena_top2, arena_top3, equipped_skin, owned_skins
		FROM profiles WHERE account_id = ?`,
		accountID,
	)
	p := &ProfileRow{}
	var owned string
	err := row.Scan(&p.AccountID, &p.Coins, &p.HighScore, &p.TotalKills,
		&p.TotalDeaths, &p.ArenaWins, &p.ArenaTop2, &p.ArenaTop3,
		&p.EquippedSkin, &owned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(owned), &p.OwnedSkins); err != nil {
		p.OwnedSkins = nil
	}
	return p, nil
}

// ApplyResult folds a finished run into the profile: coins accumulate,
// high score is a max, placements increment their counters
func (db *DB) ApplyResult(accountID int64, res MatchResult) error {
	deathInc := 0
	if res.Died {
		deathInc = 1
	}
	winInc, top2Inc, top3Inc := 0, 0, 0
	if res.Arena {
		switch res.Rank {
		case 1:
			winInc = 1
		case 2:
			top2Inc = 1
		case 3:
			top3Inc = 1
		}
	}
	_, err := db.conn.Exec(`
		UPDATE profiles SET
			coins = coins + ?,
			high_score = MAX(high_score, ?),
			total_kills = total_kills + ?,
			total_deaths = total_deaths + ?,
			arena_wins = arena_wins + ?,
			arena_top2 = arena_top2 + ?,
			arena_top3 = arena_top3 + ?
		WHERE account_id = ?`,
		res.Coins, res.Score, res.Kills, deathInc, winInc, top2Inc, top3Inc, accountID,
	)
	return err
}

// PurchaseSkin deducts the price and appends the skin to owned_skins in one
// transaction. Returns the remaining coin balance.
func (db *DB) PurchaseSkin(accountID int64, skinID string, price int) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var coins int
	var owned string
	err = tx.QueryRow(
		"SELECT coins, owned_skins FROM profiles WHERE account_id = ?", accountID,
	).Scan(&coins, &owned)
	if err != nil {
		return 0, err
	}
	var skins []string
	json.Unmarshal([]byte(owned), &skins)
	for _, s := range skins {
		if s == skinID {
			return coins, ErrSkinOwned
		}
	}
	if coins < price {
		return coins, ErrNotEnoughCoins
	}
	skins = append(skins, skinID)
	encoded, err := json.Marshal(skins)
	if err != nil {
		return coins, err
	}

	coins -= price
	_, err = tx.Exec(
		"UPDATE profiles SET coins = ?, owned_skins = ? WHERE account_id = ?",
		coins, string(encoded), accountID,
	)
	if err != nil {
		return coins, err
	}
	return coins, tx.Commit()
}

// SetEquippedSkin stores the equipped skin
func (db *DB) SetEquippedSkin(accountID int64, skinID string) error {
	_, err := db.conn.Exec(
		"UPDATE profiles SET equipped_skin = ? WHERE account_id = ?",
		skinID, accountID,
	)
	return err
}

// GetSetting reads a settings value, "" when absent
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// LeaderboardEntry is one row of the high-score leaderboard
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Username   string `json:"username"`
	HighScore  int    `json:"highScore"`
	TotalKills int    `json:"totalKills"`
	ArenaWins  int    `json:"arenaWins"`
}

// GetLeaderboard returns the top accounts by high score
func (db *DB) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT a.username, p.high_score, p.total_kills, p.arena_wins
		FROM profiles p JOIN accounts a ON a.id = p.account_id
		ORDER BY p.high_score DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.HighScore, &e.TotalKills, &e.ArenaWins); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}
