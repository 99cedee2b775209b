package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	rtdomain "eventflow/auth-service/internal/refreshtoken/domain"
	roledomain "eventflow/auth-service/internal/role/domain"
	"eventflow/auth-service/internal/security"
	userdomain "eventflow/auth-service/internal/user/domain"
)

const testPassword = "Passw0rdX"

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*userdomain.User
	byEmail map[string]*userdomain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[userdomain.NormalizeEmail(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := userdomain.NormalizeEmail(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return userdomain.ErrDuplicateEmail
	}
	cp := *u
	cp.Email = email
	r.byID[u.ID] = &cp
	r.byEmail[email] = &cp
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return nil
	}
	cur.FirstName, cur.LastName, cur.RoleID, cur.Active, cur.UpdatedAt = u.FirstName, u.LastName, u.RoleID, u.Active, u.UpdatedAt
	return nil
}

type memRoleRepo struct {
	roles []*roledomain.Role
}

func (r *memRoleRepo) GetByID(ctx context.Context, id string) (*roledomain.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, nil
}

func (r *memRoleRepo) GetByName(ctx context.Context, name string) (*roledomain.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, nil
}

// memRefreshRepo keys tokens by hash and revokes with a compare-and-set under its mutex.
// insertErr, when set, fails the next insert the way a dropped connection would.
type memRefreshRepo struct {
	mu        sync.Mutex
	byHash    map[string]*rtdomain.RefreshToken
	insertErr error
}

func (r *memRefreshRepo) GetByValue(ctx context.Context, value string) (*rtdomain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byHash[security.HashRefreshToken(value)]; ok {
		cp := *t
		cp.Token = ""
		return &cp, nil
	}
	return nil, nil
}

func (r *memRefreshRepo) Create(ctx context.Context, t *rtdomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hash := security.HashRefreshToken(t.Token)
	if _, ok := r.byHash[hash]; ok {
		return rtdomain.ErrDuplicateToken
	}
	cp := *t
	cp.Token = ""
	cp.TokenHash = hash
	r.byHash[hash] = &cp
	return nil
}

func (r *memRefreshRepo) Revoke(ctx context.Context, value, replacedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byHash[security.HashRefreshToken(value)]
	if !ok || t.Revoked {
		return rtdomain.ErrAlreadyRevoked
	}
	now := time.Now().UTC()
	t.Revoked = true
	t.RevokedAt = &now
	if replacedBy != "" {
		t.ReplacedByHash = security.HashRefreshToken(replacedBy)
	}
	return nil
}

func (r *memRefreshRepo) Rotate(ctx context.Context, oldValue string, next *rtdomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byHash[security.HashRefreshToken(oldValue)]
	if !ok || old.Revoked {
		return rtdomain.ErrAlreadyRevoked
	}
	if err := r.insertErr; err != nil {
		r.insertErr = nil
		return err
	}
	hash := security.HashRefreshToken(next.Token)
	if _, ok := r.byHash[hash]; ok {
		return rtdomain.ErrDuplicateToken
	}
	now := time.Now().UTC()
	old.Revoked = true
	old.RevokedAt = &now
	old.ReplacedByHash = hash
	cp := *next
	cp.Token = ""
	cp.TokenHash = hash
	r.byHash[hash] = &cp
	return nil
}

func (r *memRefreshRepo) get(value string) *rtdomain.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byHash[security.HashRefreshToken(value)]
}

type memRevocationCache struct {
	mu      sync.Mutex
	entries map[string]time.Duration
}

func (c *memRevocationCache) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[jti]
	return ok, nil
}

func (c *memRevocationCache) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl > 0 {
		c.entries[jti] = ttl
	}
	return nil
}

type countingHasher struct {
	*security.Hasher
	dummies atomic.Int32
}

func (h *countingHasher) CompareDummy(password []byte) {
	h.dummies.Add(1)
	h.Hasher.CompareDummy(password)
}

type testEnv struct {
	svc      *AuthService
	users    *memUserRepo
	refresh  *memRefreshRepo
	cache    *memRevocationCache
	hasher   *countingHasher
	tokens   *security.TokenProvider
	userRole *roledomain.Role
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	tokens, err := security.NewTestHMACTokenProvider(15 * time.Minute)
	if err != nil {
		t.Fatalf("NewTestHMACTokenProvider: %v", err)
	}
	env := &testEnv{
		users:    &memUserRepo{byID: map[string]*userdomain.User{}, byEmail: map[string]*userdomain.User{}},
		refresh:  &memRefreshRepo{byHash: map[string]*rtdomain.RefreshToken{}},
		cache:    &memRevocationCache{entries: map[string]time.Duration{}},
		hasher:   &countingHasher{Hasher: security.NewHasher(bcrypt.MinCost)},
		tokens:   tokens,
		userRole: &roledomain.Role{ID: "a0000000-0000-0000-0000-000000000002", Name: "User"},
	}
	roles := &memRoleRepo{roles: []*roledomain.Role{
		{ID: "a0000000-0000-0000-0000-000000000001", Name: "Admin"},
		env.userRole,
	}}
	opts = append([]Option{WithRevocationCache(env.cache)}, opts...)
	env.svc = NewAuthService(env.users, roles, env.refresh, env.hasher, tokens, "User", opts...)
	return env
}

func (e *testEnv) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	res, err := e.svc.Register(context.Background(), email, testPassword, "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("Register(%q): %v", email, err)
	}
	return res
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	res := env.register(t, "  Ada@Example.COM ")

	if res.AccessToken == "" || res.RefreshToken == "" || res.AccessTokenID == "" {
		t.Fatalf("missing tokens: %+v", res)
	}
	if res.User.Email != "ada@example.com" || res.User.Role != "User" || res.User.FirstName != "Ada" {
		t.Errorf("unexpected user info: %+v", res.User)
	}
	stored, _ := env.users.GetByEmail(context.Background(), "ada@example.com")
	if stored == nil || !stored.Active || stored.RoleID != env.userRole.ID {
		t.Fatalf("stored user: %+v", stored)
	}
	if stored.PasswordHash == testPassword || env.hasher.Compare(stored.PasswordHash, []byte(testPassword)) != nil {
		t.Error("password must be stored as a verifiable hash")
	}
	if rt := env.refresh.get(res.RefreshToken); rt == nil || rt.UserID != stored.ID || rt.Revoked {
		t.Errorf("refresh token not persisted as active: %+v", rt)
	}
}

func TestAuthService_RegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.io")

	_, err := env.svc.Register(context.Background(), "A@X.IO", testPassword, "Ada", "Lovelace")
	if err != ErrEmailAlreadyRegistered {
		t.Fatalf("Register duplicate: want ErrEmailAlreadyRegistered, got %v", err)
	}
	if Kind(err) != KindConflict {
		t.Errorf("Kind = %v, want conflict", Kind(err))
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name, email, password, first, last, field string
	}{
		{"empty email", "", testPassword, "A", "B", "email"},
		{"bad email", "not-an-email", testPassword, "A", "B", "email"},
		{"short password", "a@x.io", "Ab1", "A", "B", "password"},
		{"no upper", "a@x.io", "password1", "A", "B", "password"},
		{"no digit", "a@x.io", "Password", "A", "B", "password"},
		{"missing first name", "a@x.io", testPassword, " ", "B", "first_name"},
		{"long last name", "a@x.io", testPassword, "A", string(make([]byte, 101)) + "x", "last_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(context.Background(), tt.email, tt.password, tt.first, tt.last)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
			if Kind(err) != KindInvalidArgument {
				t.Errorf("Kind = %v, want invalid_argument", Kind(err))
			}
		})
	}
}

func TestAuthService_RegisterDefaultRoleMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.users, &memRoleRepo{}, env.refresh, env.hasher, env.tokens, "User")

	_, err := svc.Register(context.Background(), "a@x.io", testPassword, "Ada", "Lovelace")
	if err != ErrDefaultRoleMissing {
		t.Fatalf("want ErrDefaultRoleMissing, got %v", err)
	}
	if Kind(err) != KindConfiguration {
		t.Errorf("Kind = %v, want configuration", Kind(err))
	}
	if u, _ := env.users.GetByEmail(context.Background(), "a@x.io"); u != nil {
		t.Error("no user should be created without a default role")
	}
	if err := svc.CheckDefaultRole(context.Background()); !errors.Is(err, ErrDefaultRoleMissing) {
		t.Errorf("CheckDefaultRole: want ErrDefaultRoleMissing, got %v", err)
	}
	if err := env.svc.CheckDefaultRole(context.Background()); err != nil {
		t.Errorf("CheckDefaultRole with role present: %v", err)
	}
}

func TestAuthService_LoginClaimsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "a@x.io")

	res, err := env.svc.Login(context.Background(), " A@X.io", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := env.tokens.ValidateAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != reg.User.ID || claims.Email != "a@x.io" || claims.Role != "User" {
		t.Errorf("claims: sub=%q email=%q role=%q", claims.Subject, claims.Email, claims.Role)
	}
	if claims.ID != res.AccessTokenID || !claims.ExpiresAt.Time.Equal(res.ExpiresAt) {
		t.Errorf("result does not describe the issued token")
	}
	if res.RefreshToken == reg.RefreshToken {
		t.Error("login should issue a new refresh token")
	}
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.io")
	env.register(t, "off@x.io")
	off, _ := env.users.GetByEmail(context.Background(), "off@x.io")
	if err := env.svc.DeactivateUser(context.Background(), off.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}

	cases := map[string][2]string{
		"unknown email":    {"ghost@x.io", testPassword},
		"wrong password":   {"a@x.io", "Wr0ngPassword"},
		"inactive account": {"off@x.io", testPassword},
		"empty input":      {"", ""},
	}
	var msg string
	for name, c := range cases {
		_, err := env.svc.Login(context.Background(), c[0], c[1])
		if err != ErrInvalidCredentials {
			t.Fatalf("%s: want ErrInvalidCredentials, got %v", name, err)
		}
		if msg == "" {
			msg = err.Error()
		} else if err.Error() != msg {
			t.Errorf("%s: message %q differs from %q", name, err.Error(), msg)
		}
		if Kind(err) != KindUnauthorized {
			t.Errorf("%s: Kind = %v", name, Kind(err))
		}
	}
}

func TestAuthService_LoginUnknownEmailRunsDummyCompare(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.io")

	_, _ = env.svc.Login(context.Background(), "a@x.io", "Wr0ngPassword")
	if n := env.hasher.dummies.Load(); n != 0 {
		t.Fatalf("known email should not use the dummy hash, got %d", n)
	}
	_, _ = env.svc.Login(context.Background(), "ghost@x.io", testPassword)
	if n := env.hasher.dummies.Load(); n != 1 {
		t.Errorf("unknown email should run one dummy compare, got %d", n)
	}
}

func TestAuthService_RefreshRotatesSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.io")
	login, err := env.svc.Login(context.Background(), "a@x.io", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	r1 := login.RefreshToken

	res, err := env.svc.Refresh(context.Background(), r1)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	r2 := res.RefreshToken
	if r2 == "" || r2 == r1 || res.AccessToken == login.AccessToken {
		t.Fatal("refresh must return a new pair")
	}
	old := env.refresh.get(r1)
	if !old.Revoked || old.RevokedAt == nil || old.ReplacedByHash != security.HashRefreshToken(r2) {
		t.Errorf("old token not revoked with forward link: %+v", old)
	}
	if next := env.refresh.get(r2); next == nil || !next.IsActive(time.Now()) {
		t.Errorf("new token not active: %+v", next)
	}

	if _, err := env.svc.Refresh(context.Background(), r1); err != ErrInvalidRefreshToken {
		t.Errorf("replay: want ErrInvalidRefreshToken, got %v", err)
	}
	if _, err := env.svc.Refresh(context.Background(), r2); err != nil {
		t.Errorf("rotated token should still work: %v", err)
	}
}

func TestAuthService_RefreshConcurrentExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	r1 := env.register(t, "a@x.io").RefreshToken

	const n = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		start     = make(chan struct{})
		errs      = make(chan error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.svc.Refresh(context.Background(), r1)
			if err == nil {
				successes.Add(1)
				return
			}
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	if got := successes.Load(); got != 1 {
		t.Fatalf("successes = %d, want exactly 1", got)
	}
	for err := range errs {
		if err != ErrInvalidRefreshToken {
			t.Errorf("loser: want ErrInvalidRefreshToken, got %v", err)
		}
	}
}

func TestAuthService_RefreshExpired(t *testing.T) {
	env := newTestEnv(t)
	r1 := env.register(t, "a@x.io").RefreshToken

	later := time.Now().Add(31 * 24 * time.Hour)
	svc := NewAuthService(env.users, &memRoleRepo{roles: []*roledomain.Role{env.userRole}}, env.refresh, env.hasher, env.tokens, "User",
		WithClock(func() time.Time { return later }))
	if _, err := svc.Refresh(context.Background(), r1); err != ErrInvalidRefreshToken {
		t.Errorf("expired: want ErrInvalidRefreshToken, got %v", err)
	}
	if err := svc.Revoke(context.Background(), r1); err != ErrTokenAlreadyRevoked {
		t.Errorf("revoke expired: want ErrTokenAlreadyRevoked, got %v", err)
	}
}

func TestAuthService_RefreshInvalidInputs(t *testing.T) {
	env := newTestEnv(t)
	for _, v := range []string{"", "never-issued"} {
		if _, err := env.svc.Refresh(context.Background(), v); err != ErrInvalidRefreshToken {
			t.Errorf("Refresh(%q): want ErrInvalidRefreshToken, got %v", v, err)
		}
	}
}

func TestAuthService_RefreshDeactivatedUser(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "a@x.io")
	if err := env.svc.DeactivateUser(context.Background(), reg.User.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	if _, err := env.svc.Refresh(context.Background(), reg.RefreshToken); err != ErrInvalidRefreshToken {
		t.Errorf("want ErrInvalidRefreshToken, got %v", err)
	}
	if rt := env.refresh.get(reg.RefreshToken); rt.Revoked {
		t.Error("rejected refresh must not consume the token")
	}
}

func TestAuthService_RefreshUserDeleted(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "a@x.io")
	env.users.mu.Lock()
	delete(env.users.byID, reg.User.ID)
	delete(env.users.byEmail, reg.User.Email)
	env.users.mu.Unlock()

	if _, err := env.svc.Refresh(context.Background(), reg.RefreshToken); err != ErrInvalidRefreshToken {
		t.Fatalf("want ErrInvalidRefreshToken, got %v", err)
	}
	if rt := env.refresh.get(reg.RefreshToken); rt == nil || rt.Revoked {
		t.Errorf("token of a missing user must be left unrevoked: %+v", rt)
	}
}

func TestAuthService_RefreshStoreFailureKeepsTokenUsable(t *testing.T) {
	env := newTestEnv(t)
	r1 := env.register(t, "a@x.io").RefreshToken
	env.refresh.insertErr = errors.New("connection reset")

	_, err := env.svc.Refresh(context.Background(), r1)
	if Kind(err) != KindUnavailable {
		t.Fatalf("first Refresh: want unavailable, got %v", err)
	}
	if rt := env.refresh.get(r1); rt == nil || !rt.IsActive(time.Now()) {
		t.Fatalf("presented token must stay active after a failed rotation: %+v", rt)
	}

	res, err := env.svc.Refresh(context.Background(), r1)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if next := env.refresh.get(res.RefreshToken); next == nil || !next.IsActive(time.Now()) {
		t.Errorf("successor not stored: %+v", next)
	}
	if rt := env.refresh.get(r1); !rt.Revoked {
		t.Error("presented token must be revoked after a successful retry")
	}
}

func TestAuthService_RevokeIsNotIdempotent(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "a@x.io")
	r2, err := env.svc.Refresh(context.Background(), reg.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := env.svc.Revoke(context.Background(), r2.RefreshToken); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if rt := env.refresh.get(r2.RefreshToken); !rt.Revoked || rt.ReplacedByHash != "" {
		t.Errorf("logout should revoke without replacement: %+v", rt)
	}
	err = env.svc.Revoke(context.Background(), r2.RefreshToken)
	if err != ErrTokenAlreadyRevoked {
		t.Fatalf("second Revoke: want ErrTokenAlreadyRevoked, got %v", err)
	}
	if err.Error() != "token is already revoked or expired" {
		t.Errorf("message = %q", err.Error())
	}
	if _, err := env.svc.Refresh(context.Background(), r2.RefreshToken); err != ErrInvalidRefreshToken {
		t.Errorf("Refresh after revoke: want ErrInvalidRefreshToken, got %v", err)
	}
	if err := env.svc.Revoke(context.Background(), "unknown"); err != ErrInvalidRefreshToken {
		t.Errorf("Revoke unknown: want ErrInvalidRefreshToken, got %v", err)
	}
}

func TestAuthService_RevokeAccessToken(t *testing.T) {
	env := newTestEnv(t)
	reg := env.register(t, "a@x.io")
	claims, err := env.tokens.ValidateAccess(reg.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if err := env.svc.RevokeAccessToken(context.Background(), claims); err != nil {
		t.Fatalf("RevokeAccessToken: %v", err)
	}
	ttl, ok := env.cache.entries[claims.ID]
	if !ok {
		t.Fatal("jti not blacklisted")
	}
	if ttl <= 14*time.Minute || ttl > 15*time.Minute {
		t.Errorf("ttl = %v, want remaining lifetime ~15m", ttl)
	}

	noCache := NewAuthService(env.users, &memRoleRepo{}, env.refresh, env.hasher, env.tokens, "User")
	if err := noCache.RevokeAccessToken(context.Background(), claims); !errors.Is(err, ErrUnavailable) {
		t.Errorf("without cache: want ErrUnavailable, got %v", err)
	}
}

func TestAuthService_DeactivateUser(t *testing.T) {
	env := newTestEnv(t)
	if err := env.svc.DeactivateUser(context.Background(), "missing"); err != ErrUserNotFound {
		t.Errorf("missing user: want ErrUserNotFound, got %v", err)
	}
	var verr *ValidationError
	if err := env.svc.DeactivateUser(context.Background(), ""); !errors.As(err, &verr) {
		t.Errorf("empty id: want ValidationError, got %v", err)
	}
	reg := env.register(t, "a@x.io")
	for i := 0; i < 2; i++ {
		if err := env.svc.DeactivateUser(context.Background(), reg.User.ID); err != nil {
			t.Fatalf("DeactivateUser #%d: %v", i, err)
		}
	}
	if u, _ := env.users.GetByID(context.Background(), reg.User.ID); u.Active {
		t.Error("user still active")
	}
}

type failingRefreshRepo struct{ err error }

func (r failingRefreshRepo) GetByValue(context.Context, string) (*rtdomain.RefreshToken, error) {
	return nil, r.err
}
func (r failingRefreshRepo) Create(context.Context, *rtdomain.RefreshToken) error { return r.err }
func (r failingRefreshRepo) Revoke(context.Context, string, string) error       { return r.err }
func (r failingRefreshRepo) Rotate(context.Context, string, *rtdomain.RefreshToken) error {
	return r.err
}

func TestAuthService_StoreFailureIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	dbErr := errors.New("connection refused")
	svc := NewAuthService(env.users, &memRoleRepo{roles: []*roledomain.Role{env.userRole}}, failingRefreshRepo{err: dbErr}, env.hasher, env.tokens, "User")

	_, err := svc.Refresh(context.Background(), "anything")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, dbErr) {
		t.Fatalf("Refresh: want ErrUnavailable wrapping cause, got %v", err)
	}
	if Kind(err) != KindUnavailable {
		t.Errorf("Kind = %v, want unavailable", Kind(err))
	}
	if err := svc.Revoke(context.Background(), "anything"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Revoke: want ErrUnavailable, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@x.io", testPassword, "Ada", "Lovelace"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Register: want ErrUnavailable, got %v", err)
	}
}

type blockingRefreshRepo struct{ failingRefreshRepo }

func (blockingRefreshRepo) GetByValue(ctx context.Context, _ string) (*rtdomain.RefreshToken, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAuthService_OperationTimeout(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.users, &memRoleRepo{}, blockingRefreshRepo{}, env.hasher, env.tokens, "User",
		WithOperationTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := svc.Refresh(context.Background(), "anything")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want ErrUnavailable wrapping DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not applied, took %v", elapsed)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrEmailAlreadyRegistered, KindConflict},
		{ErrDefaultRoleMissing, KindConfiguration},
		{ErrInvalidCredentials, KindUnauthorized},
		{ErrInvalidRefreshToken, KindUnauthorized},
		{ErrTokenAlreadyRevoked, KindUnauthorized},
		{ErrUserNotFound, KindNotFound},
		{unavailable("op", errors.New("x")), KindUnavailable},
		{&ValidationError{Field: "f", Message: "m"}, KindInvalidArgument},
		{errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
