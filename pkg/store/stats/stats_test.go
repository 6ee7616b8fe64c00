package stats

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlaycounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.IncrementPlaycount(ctx, "chat1", "boom"); err != nil {
			t.Fatalf("IncrementPlaycount: %v", err)
		}
	}
	if err := s.IncrementPlaycount(ctx, "chat1", "honk"); err != nil {
		t.Fatalf("IncrementPlaycount: %v", err)
	}
	if err := s.IncrementPlaycount(ctx, "chat2", "boom"); err != nil {
		t.Fatalf("IncrementPlaycount: %v", err)
	}

	n, err := s.Playcount(ctx, "chat1", "boom")
	if err != nil || n != 3 {
		t.Errorf("chat1 boom count = %d, err %v", n, err)
	}
	n, err = s.Playcount(ctx, "", "boom")
	if err != nil || n != 4 {
		t.Errorf("global boom count = %d, err %v", n, err)
	}

	top, err := s.TopSounds(ctx, "chat1", 5)
	if err != nil {
		t.Fatalf("TopSounds: %v", err)
	}
	if len(top) != 2 || top[0].Sound != "boom" || top[0].Count != 3 {
		t.Errorf("unexpected chat rankings: %+v", top)
	}

	total, err := s.TotalPlays(ctx, "")
	if err != nil || total != 5 {
		t.Errorf("global total = %d, err %v", total, err)
	}
}

func TestTriviaScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddTriviaPoints(ctx, "chat1", "p1", "alice", 3); err != nil {
		t.Fatalf("AddTriviaPoints: %v", err)
	}
	if err := s.AddTriviaPoints(ctx, "chat1", "p2", "bob", 5); err != nil {
		t.Fatalf("AddTriviaPoints: %v", err)
	}
	if err := s.AddTriviaPoints(ctx, "chat1", "p1", "alice2", 4); err != nil {
		t.Fatalf("AddTriviaPoints: %v", err)
	}

	ranks, err := s.TriviaRankings(ctx, "chat1")
	if err != nil {
		t.Fatalf("TriviaRankings: %v", err)
	}
	if len(ranks) != 2 {
		t.Fatalf("expected 2 players, got %d", len(ranks))
	}
	if ranks[0].PlayerID != "p1" || ranks[0].Score != 7 || ranks[0].Name != "alice2" {
		t.Errorf("unexpected leader: %+v", ranks[0])
	}
}

func TestUserTracking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.TrackUser(ctx, "discord", "SomeUser", "42"); err != nil {
		t.Fatalf("TrackUser: %v", err)
	}

	id, err := s.LookupUserID(ctx, "discord", "someuser")
	if err != nil || id != "42" {
		t.Errorf("lookup = %q, err %v", id, err)
	}

	// @-prefixed queries work too
	id, err = s.LookupUserID(ctx, "discord", "@SomeUser")
	if err != nil || id != "42" {
		t.Errorf("prefixed lookup = %q, err %v", id, err)
	}

	_, err = s.LookupUserID(ctx, "telegram", "someuser")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for unknown platform, got %v", err)
	}
}
