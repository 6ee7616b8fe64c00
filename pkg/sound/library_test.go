package sound

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/glitchlabs/glitchbot/pkg/store"
)

// minimal but valid mp3 payload: ID3 header plus padding
var mp3Bytes = append([]byte("ID3"), make([]byte, 16)...)

func newTestLibrary(t *testing.T, sounds ...string) *Library {
	t.Helper()
	dir := t.TempDir()
	for _, name := range sounds {
		if err := os.WriteFile(filepath.Join(dir, name+".mp3"), mp3Bytes, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	lib, err := NewLibrary(dir, st, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

func TestListAndResolve(t *testing.T) {
	lib := newTestLibrary(t, "boom", "honk", "airhorn")

	names := lib.List()
	if len(names) != 3 || names[0] != "airhorn" {
		t.Errorf("unexpected list: %v", names)
	}

	m, err := lib.Resolve("boom")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Name != "boom" || filepath.Base(m.Path) != "boom.mp3" {
		t.Errorf("unexpected match: %+v", m)
	}

	if _, err := lib.Resolve("nothere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAliases(t *testing.T) {
	lib := newTestLibrary(t, "boom")

	if err := lib.AddAlias("explosion", "boom"); err != nil {
		t.Fatalf("AddAlias: %v", err)
	}

	m, err := lib.Resolve("explosion")
	if err != nil || m.Name != "boom" {
		t.Errorf("alias resolution: %+v, err %v", m, err)
	}

	// Aliasing an alias chains to the canonical sound.
	if err := lib.AddAlias("kaboom", "explosion"); err != nil {
		t.Fatalf("AddAlias chained: %v", err)
	}
	m, err = lib.Resolve("kaboom")
	if err != nil || m.Name != "boom" {
		t.Errorf("chained alias resolution: %+v, err %v", m, err)
	}

	if err := lib.AddAlias("explosion", "boom"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate alias accepted: %v", err)
	}
	if err := lib.AddAlias("x", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("alias to missing sound accepted: %v", err)
	}

	got := lib.Aliases("explosion")
	if len(got) != 2 || got[0] != "boom" || got[1] != "kaboom" {
		t.Errorf("unexpected aliases: %v", got)
	}

	target, err := lib.RemoveAlias("kaboom")
	if err != nil || target != "boom" {
		t.Errorf("RemoveAlias: target=%q err=%v", target, err)
	}
	if _, err := lib.RemoveAlias("kaboom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("removing gone alias: %v", err)
	}
}

func TestCandidates(t *testing.T) {
	lib := newTestLibrary(t, "boom", "broom", "honk")

	// Exact match wins outright even with near neighbours.
	got := lib.Candidates("boom")
	if len(got) != 1 || got[0].Name != "boom" {
		t.Errorf("exact match not preferred: %+v", got)
	}

	// Near miss finds the close neighbours.
	got = lib.Candidates("bom")
	if len(got) == 0 {
		t.Fatal("expected fuzzy candidates for 'bom'")
	}
	for _, m := range got {
		if m.Name == "honk" {
			t.Errorf("unrelated sound matched: %+v", got)
		}
	}
}

func TestCandidatesTooBroad(t *testing.T) {
	lib := newTestLibrary(t, "sa", "sb", "sc", "sd", "se", "sf")
	if got := lib.Candidates("s"); got != nil {
		t.Errorf("over-broad search should return nothing, got %+v", got)
	}
}

func TestRandom(t *testing.T) {
	lib := newTestLibrary(t, "boom", "honk")
	m, err := lib.Random(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if m.Name != "boom" && m.Name != "honk" {
		t.Errorf("unexpected pick: %+v", m)
	}

	empty := newTestLibrary(t)
	if _, err := empty.Random(rand.New(rand.NewSource(1))); !errors.Is(err, ErrEmptyLibrary) {
		t.Errorf("expected ErrEmptyLibrary, got %v", err)
	}
}

func TestSaveAndDelete(t *testing.T) {
	lib := newTestLibrary(t)

	if err := lib.Save("new", mp3Bytes); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !lib.Exists("new") {
		t.Error("saved sound not visible")
	}
	if err := lib.Save("new", mp3Bytes); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate save accepted: %v", err)
	}
	if err := lib.Save("bad", []byte("this is not audio at all")); !errors.Is(err, ErrInvalidAudio) {
		t.Errorf("invalid audio accepted: %v", err)
	}

	if err := lib.Delete("new"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if lib.Exists("new") {
		t.Error("deleted sound still visible")
	}
	if err := lib.Delete("new"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting gone sound: %v", err)
	}
}

func TestIsValidAudio(t *testing.T) {
	ogg := append([]byte("OggS"), make([]byte, 16)...)
	wav := append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 8)...)

	if !IsValidAudio(mp3Bytes) || !IsValidAudio(ogg) || !IsValidAudio(wav) {
		t.Error("valid signatures rejected")
	}
	if IsValidAudio([]byte("plain text file here")) || IsValidAudio(nil) {
		t.Error("invalid payload accepted")
	}
}
