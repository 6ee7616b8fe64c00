package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := newTestStore(t)

	in := map[string]string{"boom": "boom.mp3"}
	if err := s.Save("aliases", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := map[string]string{}
	if err := s.Load("aliases", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out["boom"] != "boom.mp3" {
		t.Errorf("roundtrip lost data: %v", out)
	}
}

func TestLoadMissingDocIsNoop(t *testing.T) {
	s := newTestStore(t)

	out := map[string]string{"keep": "me"}
	if err := s.Load("nothing", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out["keep"] != "me" {
		t.Error("missing doc overwrote target")
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Save("doc", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestAdminRoles(t *testing.T) {
	s := newTestStore(t)

	if s.IsAdmin("discord", "1") {
		t.Error("fresh store should have no admins")
	}

	if err := s.AddAdmin("discord", "1", false); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if !s.IsAdmin("discord", "1") {
		t.Error("admin not recorded")
	}
	if s.IsSuperadmin("discord", "1") {
		t.Error("plain admin must not pass superadmin check")
	}
	if s.IsAdmin("telegram", "1") {
		t.Error("roles must be per platform")
	}

	if err := s.AddAdmin("discord", "1", false); err != ErrAlreadyAdmin {
		t.Errorf("expected ErrAlreadyAdmin, got %v", err)
	}

	if err := s.AddAdmin("discord", "2", true); err != nil {
		t.Fatalf("AddAdmin super: %v", err)
	}
	if !s.IsAdmin("discord", "2") || !s.IsSuperadmin("discord", "2") {
		t.Error("superadmin must pass both checks")
	}

	if err := s.RemoveAdmin("discord", "1"); err != nil {
		t.Fatalf("RemoveAdmin: %v", err)
	}
	if s.IsAdmin("discord", "1") {
		t.Error("removed admin still present")
	}
	if err := s.RemoveAdmin("discord", "1"); err != ErrNotAdmin {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
}

func TestAssignFirstSuperadmin(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.AssignFirstSuperadmin("telegram", "100")
	if err != nil || !ok {
		t.Fatalf("first assignment: ok=%v err=%v", ok, err)
	}
	if !s.IsSuperadmin("telegram", "100") {
		t.Error("superadmin not recorded")
	}

	ok, err = s.AssignFirstSuperadmin("telegram", "200")
	if err != nil {
		t.Fatalf("second assignment: %v", err)
	}
	if ok || s.IsSuperadmin("telegram", "200") {
		t.Error("second caller must not be promoted")
	}
}

func TestWhitelist(t *testing.T) {
	s := newTestStore(t)

	if s.IsWhitelisted("telegram", "55") {
		t.Error("fresh store should have empty whitelist")
	}
	if err := s.AddWhitelist("telegram", "55"); err != nil {
		t.Fatalf("AddWhitelist: %v", err)
	}
	if !s.IsWhitelisted("telegram", "55") {
		t.Error("whitelist entry not recorded")
	}
	if err := s.AddWhitelist("telegram", "55"); err != ErrAlreadyWhitelisted {
		t.Errorf("expected ErrAlreadyWhitelisted, got %v", err)
	}
	if err := s.RemoveWhitelist("telegram", "55"); err != nil {
		t.Fatalf("RemoveWhitelist: %v", err)
	}
	if err := s.RemoveWhitelist("telegram", "55"); err != ErrNotWhitelisted {
		t.Errorf("expected ErrNotWhitelisted, got %v", err)
	}
}
