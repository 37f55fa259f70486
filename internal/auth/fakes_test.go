package auth

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/submission-service/internal/roles"
	"github.com/noah-isme/submission-service/internal/users"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*users.User
	roles  []roles.Role
	err    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*users.User{}, roles: testRoles()}
}

func (f *fakeUsers) find(match func(*users.User) bool) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return f.find(func(u *users.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return f.find(func(u *users.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*users.User, error) {
	return f.find(func(u *users.User) bool { return u.ID == id })
}

func (f *fakeUsers) Create(ctx context.Context, in users.NewUser) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == in.Email || u.Username == in.Username {
			return nil, users.ErrDuplicate
		}
	}
	f.nextID++
	u := &users.User{
		ID:           f.nextID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		RoleID:       in.RoleID,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	for _, r := range f.roles {
		if r.ID == in.RoleID {
			u.RoleName = r.Name
		}
	}
	f.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	now := time.Now()
	u.LastLogin = &now
	return 1, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id int64, hash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	u.PasswordHash = hash
	return 1, nil
}

func (f *fakeUsers) setActive(id int64, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].IsActive = active
}

func (f *fakeUsers) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeRoles struct {
	list []roles.Role
}

func (f fakeRoles) ListRoles(ctx context.Context) ([]roles.Role, error) {
	return f.list, nil
}

func (f fakeRoles) GetByName(ctx context.Context, name string) (roles.Role, error) {
	for _, r := range f.list {
		if r.Name == name {
			return r, nil
		}
	}
	return roles.Role{}, roles.ErrNotFound
}

func testRoles() []roles.Role {
	return []roles.Role{
		{ID: 1, Name: roles.Admin, Description: "Administrator"},
		{ID: 2, Name: roles.Manager, Description: "Manager"},
		{ID: 3, Name: roles.User, Description: "Regular user"},
		{ID: 4, Name: roles.Viewer, Description: "Read only"},
	}
}

type fakeLedger struct {
	mu      sync.Mutex
	records map[string]RefreshToken
	now     func() time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[string]RefreshToken{}, now: time.Now}
}

func (l *fakeLedger) Store(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[token] = RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt, CreatedAt: l.now()}
	return nil
}

func (l *fakeLedger) Find(ctx context.Context, token string) (*RefreshToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[token]
	if !ok || !rec.ExpiresAt.After(l.now()) {
		return nil, nil
	}
	return &rec, nil
}

func (l *fakeLedger) DeleteOne(ctx context.Context, token string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[token]; !ok {
		return 0, nil
	}
	delete(l.records, token)
	return 1, nil
}

func (l *fakeLedger) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for token, rec := range l.records {
		if rec.UserID == userID {
			delete(l.records, token)
			n++
		}
	}
	return n, nil
}

func (l *fakeLedger) count(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, rec := range l.records {
		if rec.UserID == userID {
			n++
		}
	}
	return n
}

type recordedEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedEvents) AuthEvent(event, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event+":"+outcome)
}
