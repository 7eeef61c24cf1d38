package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinova/clinova/internal/domain/company"
	"github.com/clinova/clinova/internal/domain/user"
	"github.com/clinova/clinova/internal/platform/token"
)

// ---- test doubles ----

type fakeVerifier struct {
	tokens map[string]*token.ExternalClaims
}

func (f *fakeVerifier) Verify(_ context.Context, raw string) (*token.ExternalClaims, error) {
	if ec, ok := f.tokens[raw]; ok {
		return ec, nil
	}
	return nil, fmt.Errorf("%w: unknown token", token.ErrExternalTokenInvalid)
}

type mockAuthUserRepo struct {
	nextID int64
	byID   map[int64]*user.AuthUser
}

func (m *mockAuthUserRepo) Create(_ context.Context, au *user.AuthUser) error {
	m.nextID++
	au.ID = m.nextID
	cp := *au
	m.byID[au.ID] = &cp
	return nil
}

func (m *mockAuthUserRepo) GetByID(_ context.Context, id int64) (*user.AuthUser, error) {
	if au, ok := m.byID[id]; ok {
		cp := *au
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAuthUserRepo) GetByExternalUID(_ context.Context, uid string) (*user.AuthUser, error) {
	for _, au := range m.byID {
		if au.ExternalUID == uid {
			cp := *au
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAuthUserRepo) GetByEmail(_ context.Context, email string) (*user.AuthUser, error) {
	for _, au := range m.byID {
		if au.Email == email {
			cp := *au
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAuthUserRepo) Update(_ context.Context, au *user.AuthUser) error {
	if _, ok := m.byID[au.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *au
	m.byID[au.ID] = &cp
	return nil
}

type mockUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByAuthUserID(_ context.Context, authUserID int64) (*user.User, error) {
	for _, u := range m.byID {
		if u.AuthUserID == authUserID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type mockAddressRepo struct {
	byID map[uuid.UUID]*user.Address
}

func (m *mockAddressRepo) Create(_ context.Context, a *user.Address) error {
	a.ID = uuid.New()
	if a.Country == "" {
		a.Country = "Brasil"
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockAddressRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*user.Address, error) {
	for _, a := range m.byID {
		if a.UserID != nil && *a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAddressRepo) GetByCompanyID(_ context.Context, companyID uuid.UUID) (*user.Address, error) {
	for _, a := range m.byID {
		if a.CompanyID != nil && *a.CompanyID == companyID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAddressRepo) Update(_ context.Context, a *user.Address) error {
	if _, ok := m.byID[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

type mockCompanyRepo struct {
	byID map[uuid.UUID]*company.Company
}

func (m *mockCompanyRepo) Create(_ context.Context, c *company.Company) error {
	c.ID = uuid.New()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (*company.Company, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCompanyRepo) ListByOwner(_ context.Context, _ uuid.UUID) ([]*company.Company, error) {
	return nil, nil
}

func (m *mockCompanyRepo) Update(_ context.Context, _ *company.Company) error { return nil }

// mockClientRepo shares the user map so SoftDelete can flip is_deleted the
// way the SQL implementation does.
type mockClientRepo struct {
	users *mockUserRepo
	byID  map[uuid.UUID]*UserClient
	links []ClientLink
}

func (m *mockClientRepo) Create(_ context.Context, c *UserClient) error {
	cp := *c
	m.byID[c.UserID] = &cp
	return nil
}

func (m *mockClientRepo) Get(_ context.Context, userID uuid.UUID) (*UserClient, error) {
	if c, ok := m.byID[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockClientRepo) UpdateNotes(_ context.Context, userID uuid.UUID, notes *string) error {
	c, ok := m.byID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Notes = notes
	return nil
}

func (m *mockClientRepo) SoftDelete(_ context.Context, userID uuid.UUID) error {
	u, ok := m.users.byID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsDeleted = true
	return nil
}

func (m *mockClientRepo) CreateLink(_ context.Context, l *ClientLink) error {
	m.links = append(m.links, *l)
	return nil
}

func (m *mockClientRepo) HasLink(_ context.Context, clientID, professionalUserID uuid.UUID) (bool, error) {
	for _, l := range m.links {
		if l.ClientID == clientID && l.ProfessionalID == professionalUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClientRepo) ListIDsByProfessional(_ context.Context, professionalUserID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, l := range m.links {
		if l.ProfessionalID != professionalUserID || seen[l.ClientID] {
			continue
		}
		if u, ok := m.users.byID[l.ClientID]; !ok || u.IsDeleted {
			continue
		}
		seen[l.ClientID] = true
		ids = append(ids, l.ClientID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

// ---- fixtures ----

type testEnv struct {
	svc       *Service
	clients   *mockClientRepo
	authUsers *mockAuthUserRepo
	users     *mockUserRepo
	addresses *mockAddressRepo
	companies *mockCompanyRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	verifier := &fakeVerifier{tokens: map[string]*token.ExternalClaims{
		"provider-token-carla": {
			UID:           "fb-uid-carla",
			Email:         "carla@example.com",
			EmailVerified: true,
			Name:          "Carla Lima",
		},
		"provider-token-noname": {
			UID:   "fb-uid-noname",
			Email: "diego@example.com",
		},
	}}
	tokens, err := token.NewService(token.Config{
		Secret:     []byte("unit-test-secret"),
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, verifier)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	users := &mockUserRepo{byID: map[uuid.UUID]*user.User{}}
	env := &testEnv{
		clients:   &mockClientRepo{users: users, byID: map[uuid.UUID]*UserClient{}},
		authUsers: &mockAuthUserRepo{byID: map[int64]*user.AuthUser{}},
		users:     users,
		addresses: &mockAddressRepo{byID: map[uuid.UUID]*user.Address{}},
		companies: &mockCompanyRepo{byID: map[uuid.UUID]*company.Company{}},
	}
	env.svc = NewService(env.clients, env.authUsers, env.users, env.addresses, env.companies, tokens)
	return env
}

func (e *testEnv) seedProfessional() uuid.UUID {
	id := uuid.New()
	e.users.byID[id] = &user.User{ID: id, Name: "Dra. Ana", Role: user.RoleProfessional, IsActive: true}
	return id
}

func (e *testEnv) seedCompany(ownerID uuid.UUID) uuid.UUID {
	c := &company.Company{Name: "Clinica Centro", UserProfessionalID: ownerID, IsActive: true}
	_ = e.companies.Create(context.Background(), c)
	return c.ID
}

// ---- tests ----

func TestCreateClientFullFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proID := env.seedProfessional()
	companyID := env.seedCompany(proID)

	out, err := env.svc.Create(ctx, proID, companyID, "Carla L.", "provider-token-carla")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.User.Role != user.RoleClient {
		t.Errorf("role = %q, want client", out.User.Role)
	}
	if out.User.Name != "Carla L." {
		t.Errorf("name = %q, explicit name not used", out.User.Name)
	}
	if !out.User.IsActive {
		t.Error("new client must start active")
	}

	if _, err := env.authUsers.GetByExternalUID(ctx, "fb-uid-carla"); err != nil {
		t.Errorf("auth account missing: %v", err)
	}
	addr, err := env.addresses.GetByUserID(ctx, out.User.ID)
	if err != nil {
		t.Fatalf("placeholder address missing: %v", err)
	}
	if addr.Street != "" || addr.Country != "Brasil" {
		t.Errorf("placeholder address = %+v, want blank with country Brasil", addr)
	}
	ok, err := env.clients.HasLink(ctx, out.User.ID, proID)
	if err != nil || !ok {
		t.Errorf("client link missing (ok=%v err=%v)", ok, err)
	}
}

func TestCreateClientNameFallsBackToProviderProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proID := env.seedProfessional()
	companyID := env.seedCompany(proID)

	out, err := env.svc.Create(ctx, proID, companyID, "", "provider-token-noname")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.User.Name != "diego" {
		t.Errorf("name = %q, want email local part fallback", out.User.Name)
	}
}

func TestCreateClientRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proID := env.seedProfessional()
	companyID := env.seedCompany(proID)

	if _, err := env.svc.Create(ctx, proID, companyID, "X", "garbage"); !errors.Is(err, token.ErrExternalTokenInvalid) {
		t.Errorf("bad provider token err = %v", err)
	}
	if _, err := env.svc.Create(ctx, proID, uuid.New(), "X", "provider-token-carla"); err == nil {
		t.Error("unknown company accepted")
	}

	if _, err := env.svc.Create(ctx, proID, companyID, "Carla", "provider-token-carla"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := env.svc.Create(ctx, proID, companyID, "Carla", "provider-token-carla"); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate identity err = %v, want ErrExists", err)
	}
}

func TestGetClientEnforcesLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proID := env.seedProfessional()
	otherID := env.seedProfessional()
	companyID := env.seedCompany(proID)

	created, err := env.svc.Create(ctx, proID, companyID, "Carla", "provider-token-carla")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.svc.Get(ctx, created.User.ID, proID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := env.svc.Get(ctx, created.User.ID, otherID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign read err = %v, want ErrNotFound", err)
	}
}

func TestUpdateClientNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proID := env.seedProfessional()
	companyID := env.seedCompany(proID)

	created, err := env.svc.Create(ctx, proID, companyID, "Carla", "provider-token-carla")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "prefers morning appointments"
	out, err := env.svc.UpdateNotes(ctx, created.User.ID, proID, &notes)
	if err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if out.Notes == nil || *out.Notes != notes {
		t.Errorf("notes = %v, update not applied", out.Notes)
	}

	if _, err := env.svc.UpdateNotes(ctx, created.User.ID, env.seedProfessional(), &notes); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign update err = %v, want ErrNotFound", err)
	}
}

func TestDeleteClientHidesFromReads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proID := env.seedProfessional()
	companyID := env.seedCompany(proID)

	carla, err := env.svc.Create(ctx, proID, companyID, "Carla", "provider-token-carla")
	if err != nil {
		t.Fatalf("create carla: %v", err)
	}
	diego, err := env.svc.Create(ctx, proID, companyID, "", "provider-token-noname")
	if err != nil {
		t.Fatalf("create diego: %v", err)
	}

	if err := env.svc.Delete(ctx, carla.User.ID, proID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !env.users.byID[carla.User.ID].IsDeleted {
		t.Error("system user not soft-deleted")
	}

	if _, err := env.svc.Get(ctx, carla.User.ID, proID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted read err = %v, want ErrNotFound", err)
	}
	list, err := env.svc.List(ctx, proID, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].User.ID != diego.User.ID {
		t.Errorf("list = %d entries, want only the remaining client", len(list))
	}

	if err := env.svc.Delete(ctx, carla.User.ID, proID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}
