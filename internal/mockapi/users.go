package mockapi

import (
	"strings"
	"sync"
)

type User struct {
	ID             int
	Email          string
	PasswordHash   string
	SiteID         *int
	CanSeeAllSites bool
	IsSuperuser    bool
}

// CanWrite mirrors the backend rule: site supervisors write, HQ accounts read.
func (u *User) CanWrite() bool {
	return u.SiteID != nil
}

type userStore struct {
	mu      sync.RWMutex
	byEmail map[string]*User
}

func newUserStore() *userStore {
	return &userStore{byEmail: map[string]*User{}}
}

func (s *userStore) add(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[normalizeEmail(u.Email)] = u
}

func (s *userStore) get(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[normalizeEmail(email)]
	return u, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DemoUser is a seeded account. Every demo account shares the smoke-suite password unless
// overridden.
type DemoUser struct {
	Email       string
	Password    string
	SiteID      *int
	IsSuperuser bool
}

func defaultDemoUsers(email, password string) []DemoUser {
	site := 1
	return []DemoUser{
		{Email: email, Password: password, IsSuperuser: true},
		{Email: "supervisor@test.com", Password: password, SiteID: &site},
	}
}
