// Package stats keeps the bot's counters in sqlite: per-chat and global
// sound play counts, trivia scores, and the username to user-ID map that
// backs /getuserid.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type PlayCount struct {
	Sound string
	Count int
}

type PlayerScore struct {
	PlayerID string
	Name     string
	Score    int
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS playcounts (
			chat_id TEXT NOT NULL,
			sound TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (chat_id, sound)
		);`,
		`CREATE TABLE IF NOT EXISTS trivia_scores (
			chat_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (chat_id, player_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_ids (
			platform TEXT NOT NULL,
			username TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (platform, username)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize stats schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// IncrementPlaycount bumps the counter for one sound in one chat.
func (s *Store) IncrementPlaycount(ctx context.Context, chatID, sound string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playcounts (chat_id, sound, count) VALUES (?, ?, 1)
		 ON CONFLICT (chat_id, sound) DO UPDATE SET count = count + 1`,
		chatID, sound)
	return err
}

// Playcount returns the count for one sound, per chat or across all chats.
func (s *Store) Playcount(ctx context.Context, chatID, sound string) (int, error) {
	var row *sql.Row
	if chatID == "" {
		row = s.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(count), 0) FROM playcounts WHERE sound = ?", sound)
	} else {
		row = s.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(count), 0) FROM playcounts WHERE chat_id = ? AND sound = ?", chatID, sound)
	}
	var n int
	err := row.Scan(&n)
	return n, err
}

// TopSounds lists the most played sounds, per chat when chatID is set or
// globally when it is empty.
func (s *Store) TopSounds(ctx context.Context, chatID string, limit int) ([]PlayCount, error) {
	query := `SELECT sound, SUM(count) AS total FROM playcounts
		GROUP BY sound ORDER BY total DESC, sound ASC LIMIT ?`
	args := []any{limit}
	if chatID != "" {
		query = `SELECT sound, SUM(count) AS total FROM playcounts WHERE chat_id = ?
			GROUP BY sound ORDER BY total DESC, sound ASC LIMIT ?`
		args = []any{chatID, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayCount
	for rows.Next() {
		var pc PlayCount
		if err := rows.Scan(&pc.Sound, &pc.Count); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// Playcounts returns every recorded sound count, per chat or globally.
// Sounds that have never been played have no row and are absent.
func (s *Store) Playcounts(ctx context.Context, chatID string) (map[string]int, error) {
	query := "SELECT sound, SUM(count) FROM playcounts GROUP BY sound"
	args := []any{}
	if chatID != "" {
		query = "SELECT sound, SUM(count) FROM playcounts WHERE chat_id = ? GROUP BY sound"
		args = []any{chatID}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var sound string
		var count int
		if err := rows.Scan(&sound, &count); err != nil {
			return nil, err
		}
		out[sound] = count
	}
	return out, rows.Err()
}

// TotalPlays sums every playcount, per chat or globally.
func (s *Store) TotalPlays(ctx context.Context, chatID string) (int, error) {
	var row *sql.Row
	if chatID == "" {
		row = s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(count), 0) FROM playcounts")
	} else {
		row = s.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(count), 0) FROM playcounts WHERE chat_id = ?", chatID)
	}
	var n int
	err := row.Scan(&n)
	return n, err
}

// AddTriviaPoints credits a player in a chat, recording their latest name.
func (s *Store) AddTriviaPoints(ctx context.Context, chatID, playerID, name string, points int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trivia_scores (chat_id, player_id, name, score) VALUES (?, ?, ?, ?)
		 ON CONFLICT (chat_id, player_id) DO UPDATE SET score = score + excluded.score, name = excluded.name`,
		chatID, playerID, name, points)
	return err
}

// TriviaRankings returns the chat scoreboard, best first.
func (s *Store) TriviaRankings(ctx context.Context, chatID string) ([]PlayerScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, name, score FROM trivia_scores WHERE chat_id = ?
		 ORDER BY score DESC, name ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerScore
	for rows.Next() {
		var ps PlayerScore
		if err := rows.Scan(&ps.PlayerID, &ps.Name, &ps.Score); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// TrackUser records the user ID seen for a username so /getuserid can
// answer later. Usernames are matched case-insensitively.
func (s *Store) TrackUser(ctx context.Context, platform, username, userID string) error {
	if username == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_ids (platform, username, user_id) VALUES (?, ?, ?)
		 ON CONFLICT (platform, username) DO UPDATE SET user_id = excluded.user_id`,
		platform, strings.ToLower(username), userID)
	return err
}

// LookupUserID resolves a username to the last user ID seen for it.
func (s *Store) LookupUserID(ctx context.Context, platform, username string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM user_ids WHERE platform = ? AND username = ?",
		platform, strings.ToLower(strings.TrimPrefix(username, "@")))
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
