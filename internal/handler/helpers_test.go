package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"note-service/internal/middleware"
	"note-service/internal/model"
	"note-service/internal/quota"
	"note-service/internal/store"
	"note-service/pkg/jwtutil"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds an echo context for a request, optionally carrying
// verified claims as if Auth had run.
func newContext(e *echo.Echo, method, path, body string, claims *jwtutil.UserClaims) (echo.Context, *httptest.ResponseRecorder) {
	var req = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		middleware.SetClaims(c, claims)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func mustUnmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, data)
	}
}

// fakeUserStore is an in-memory UserFinder. When a tenant map is
// supplied, the returned user's Tenant reflects its current state, as
// the real store's Preload does.
type fakeUserStore struct {
	users   map[uint]*model.User
	tenants map[uint]*model.Tenant
}

func (f *fakeUserStore) withTenant(u *model.User) *model.User {
	if tn, ok := f.tenants[u.TenantID]; ok {
		u.Tenant = *tn
	}
	return u
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return f.withTenant(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return f.withTenant(u), nil
	}
	return nil, store.ErrNotFound
}

// fakeTenantStore is an in-memory TenantDirectory
type fakeTenantStore struct {
	tenants map[uint]*model.Tenant
}

func (f *fakeTenantStore) FindBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	for _, tn := range f.tenants {
		if tn.Slug == slug {
			return tn, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTenantStore) FindByID(_ context.Context, id uint) (*model.Tenant, error) {
	if tn, ok := f.tenants[id]; ok {
		return tn, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeTenantStore) Upgrade(_ context.Context, id uint) (*model.Tenant, error) {
	tn, ok := f.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	tn.Plan = model.PlanPro
	return tn, nil
}

// fakeNoteStore mirrors NoteStore semantics in memory: tenant-filtered
// lookups and the free-plan quota applied at create time.
type fakeNoteStore struct {
	tenants map[uint]*model.Tenant
	notes   map[uint]*model.Note
	nextID  uint
}

func newFakeNoteStore(tenants map[uint]*model.Tenant) *fakeNoteStore {
	return &fakeNoteStore{
		tenants: tenants,
		notes:   make(map[uint]*model.Note),
		nextID:  1,
	}
}

func (f *fakeNoteStore) ListByTenant(_ context.Context, tenantID uint) ([]model.Note, error) {
	out := make([]model.Note, 0)
	for _, n := range f.notes {
		if n.TenantID == tenantID {
			out = append(out, *n)
		}
	}
	// Newest-created first; ids are assigned in creation order
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeNoteStore) Create(ctx context.Context, tenantID, userID uint, title, details string) (*model.Note, error) {
	tenant, ok := f.tenants[tenantID]
	if !ok {
		return nil, store.ErrNotFound
	}

	var count int64
	for _, n := range f.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	if !quota.CanCreate(tenant.Plan, count) {
		return nil, store.ErrQuotaExceeded
	}

	note := &model.Note{
		ID:       f.nextID,
		Title:    title,
		Details:  details,
		TenantID: tenantID,
		UserID:   userID,
	}
	f.notes[note.ID] = note
	f.nextID++
	return note, nil
}

func (f *fakeNoteStore) GetByID(_ context.Context, tenantID, noteID uint) (*model.Note, error) {
	n, ok := f.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return n, nil
}

func (f *fakeNoteStore) Update(_ context.Context, tenantID, noteID uint, title, details string) (*model.Note, error) {
	n, ok := f.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	n.Title = title
	n.Details = details
	return n, nil
}

func (f *fakeNoteStore) Delete(_ context.Context, tenantID, noteID uint) error {
	n, ok := f.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(f.notes, noteID)
	return nil
}
