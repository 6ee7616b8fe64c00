package store

import (
	"fmt"
	"slices"
)

const adminsDoc = "admins"

// roleSet holds the two admin tiers for one platform. Superadmins implicitly
// pass every admin check; the reverse does not hold.
type roleSet struct {
	Admins      []string `json:"admins"`
	Superadmins []string `json:"superadmins"`
}

type adminFile map[string]*roleSet

var (
	ErrAlreadyAdmin = fmt.Errorf("user is already an admin")
	ErrNotAdmin     = fmt.Errorf("user is not an admin")
)

func (s *Store) loadAdmins() (adminFile, error) {
	f := adminFile{}
	if err := s.loadLocked(adminsDoc, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) IsAdmin(platform, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return false
	}
	rs := f[platform]
	if rs == nil {
		return false
	}
	return slices.Contains(rs.Admins, userID) || slices.Contains(rs.Superadmins, userID)
}

func (s *Store) IsSuperadmin(platform, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return false
	}
	rs := f[platform]
	return rs != nil && slices.Contains(rs.Superadmins, userID)
}

func (s *Store) AddAdmin(platform, userID string, super bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return err
	}
	rs := f[platform]
	if rs == nil {
		rs = &roleSet{}
		f[platform] = rs
	}

	if super {
		if slices.Contains(rs.Superadmins, userID) {
			return ErrAlreadyAdmin
		}
		rs.Superadmins = append(rs.Superadmins, userID)
	} else {
		if slices.Contains(rs.Admins, userID) || slices.Contains(rs.Superadmins, userID) {
			return ErrAlreadyAdmin
		}
		rs.Admins = append(rs.Admins, userID)
	}
	return s.saveLocked(adminsDoc, f)
}

func (s *Store) RemoveAdmin(platform, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return err
	}
	rs := f[platform]
	if rs == nil {
		return ErrNotAdmin
	}

	before := len(rs.Admins) + len(rs.Superadmins)
	rs.Admins = slices.DeleteFunc(rs.Admins, func(id string) bool { return id == userID })
	rs.Superadmins = slices.DeleteFunc(rs.Superadmins, func(id string) bool { return id == userID })
	if len(rs.Admins)+len(rs.Superadmins) == before {
		return ErrNotAdmin
	}
	return s.saveLocked(adminsDoc, f)
}

func (s *Store) HasSuperadmins(platform string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return false
	}
	rs := f[platform]
	return rs != nil && len(rs.Superadmins) > 0
}

// AssignFirstSuperadmin promotes userID when the platform has no superadmin
// yet. Returns true when the promotion happened.
func (s *Store) AssignFirstSuperadmin(platform, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return false, err
	}
	rs := f[platform]
	if rs != nil && len(rs.Superadmins) > 0 {
		return false, nil
	}
	if rs == nil {
		rs = &roleSet{}
		f[platform] = rs
	}
	rs.Superadmins = append(rs.Superadmins, userID)
	return true, s.saveLocked(adminsDoc, f)
}

// Admins returns the admin and superadmin lists for a platform.
func (s *Store) Admins(platform string) (admins, superadmins []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.loadAdmins()
	if err != nil {
		return nil, nil
	}
	rs := f[platform]
	if rs == nil {
		return nil, nil
	}
	return slices.Clone(rs.Admins), slices.Clone(rs.Superadmins)
}
