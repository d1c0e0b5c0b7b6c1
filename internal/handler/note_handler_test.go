package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"note-service/internal/model"
	"note-service/pkg/jwtutil"
)

var (
	acmeClaims   = &jwtutil.UserClaims{UserID: 1, Email: "admin@acme.test", TenantID: 1, Role: "admin"}
	globexClaims = &jwtutil.UserClaims{UserID: 3, Email: "admin@globex.test", TenantID: 2, Role: "admin"}
)

func newNoteFixture() (*NoteHandler, *fakeNoteStore) {
	tenants := map[uint]*model.Tenant{
		1: {ID: 1, Name: "Acme Inc", Slug: "acme", Plan: model.PlanFree},
		2: {ID: 2, Name: "Globex Corp", Slug: "globex", Plan: model.PlanPro},
	}
	notes := newFakeNoteStore(tenants)
	return NewNoteHandler(notes), notes
}

func TestNoteCreate_Validation(t *testing.T) {
	h, _ := newNoteFixture()
	e := newEcho()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing title", `{"details":"body only"}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(e, http.MethodPost, "/api/notes", tt.body, acmeClaims)
			if err := h.Create(c); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestNoteCreate_FreeQuota(t *testing.T) {
	h, _ := newNoteFixture()
	e := newEcho()

	// First three creations on the free tenant succeed
	for i := 1; i <= 3; i++ {
		body := fmt.Sprintf(`{"title":"note %d","details":"d"}`, i)
		c, rec := newContext(e, http.MethodPost, "/api/notes", body, acmeClaims)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("creation %d: status = %d, want %d", i, rec.Code, http.StatusCreated)
		}
	}

	// The fourth is rejected with the distinguished quota code
	c, rec := newContext(e, http.MethodPost, "/api/notes", `{"title":"note 4"}`, acmeClaims)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if body := decodeBody(t, rec); body["error"] != "quota_exceeded" {
		t.Errorf("error = %v, want %q", body["error"], "quota_exceeded")
	}

	// Nothing was persisted by the rejected attempt
	listC, listRec := newContext(e, http.MethodGet, "/api/notes", "", acmeClaims)
	if err := h.List(listC); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := listRec.Body.String(); len(got) == 0 {
		t.Fatal("empty list response")
	}
	var listed []model.Note
	mustUnmarshal(t, listRec.Body.Bytes(), &listed)
	if len(listed) != 3 {
		t.Errorf("note count after rejection = %d, want 3", len(listed))
	}
}

func TestNoteCreate_ProUnlimited(t *testing.T) {
	h, _ := newNoteFixture()
	e := newEcho()

	for i := 1; i <= 10; i++ {
		body := fmt.Sprintf(`{"title":"note %d"}`, i)
		c, rec := newContext(e, http.MethodPost, "/api/notes", body, globexClaims)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("creation %d on pro tenant: status = %d, want %d", i, rec.Code, http.StatusCreated)
		}
	}
}

func TestNoteList_NewestFirstAndTenantScoped(t *testing.T) {
	h, notes := newNoteFixture()
	e := newEcho()

	for i := 1; i <= 3; i++ {
		if _, err := notes.Create(context.Background(), 1, 1, fmt.Sprintf("acme %d", i), ""); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := notes.Create(context.Background(), 2, 3, "globex only", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newContext(e, http.MethodGet, "/api/notes", "", acmeClaims)
	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var listed []model.Note
	mustUnmarshal(t, rec.Body.Bytes(), &listed)
	if len(listed) != 3 {
		t.Fatalf("listed %d notes, want 3", len(listed))
	}
	if listed[0].Title != "acme 3" || listed[2].Title != "acme 1" {
		t.Errorf("order = [%s, %s, %s], want newest first", listed[0].Title, listed[1].Title, listed[2].Title)
	}
	for _, n := range listed {
		if n.TenantID != 1 {
			t.Errorf("note %d belongs to tenant %d, leaked across tenants", n.ID, n.TenantID)
		}
	}
}

func TestNoteGet_CrossTenantIsNotFound(t *testing.T) {
	h, notes := newNoteFixture()
	e := newEcho()

	created, err := notes.Create(context.Background(), 2, 3, "globex secret", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A member of tenant 1 asking for tenant 2's note by exact id gets
	// 404, never 403
	c, rec := newContext(e, http.MethodGet, "/api/notes/1", "", acmeClaims)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	if err := h.Get(c); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// The owning tenant still sees it
	c2, rec2 := newContext(e, http.MethodGet, "/api/notes/1", "", globexClaims)
	c2.SetParamNames("id")
	c2.SetParamValues(fmt.Sprint(created.ID))
	if err := h.Get(c2); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec2.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec2.Code, http.StatusOK)
	}
}

func TestNoteUpdate_CrossTenantIsNotFound(t *testing.T) {
	h, notes := newNoteFixture()
	e := newEcho()

	created, err := notes.Create(context.Background(), 2, 3, "globex note", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newContext(e, http.MethodPut, "/api/notes/1", `{"title":"hijacked"}`, acmeClaims)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	if err := h.Update(c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	got, err := notes.GetByID(context.Background(), 2, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "globex note" {
		t.Errorf("cross-tenant update mutated the note: title = %q", got.Title)
	}
}

func TestNoteDelete(t *testing.T) {
	h, notes := newNoteFixture()
	e := newEcho()

	created, err := notes.Create(context.Background(), 1, 1, "to delete", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Run("cross-tenant delete is not found", func(t *testing.T) {
		c, rec := newContext(e, http.MethodDelete, "/api/notes/1", "", globexClaims)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(created.ID))
		if err := h.Delete(c); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		c, rec := newContext(e, http.MethodDelete, "/api/notes/1", "", acmeClaims)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(created.ID))
		if err := h.Delete(c); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if body := decodeBody(t, rec); body["ok"] != true {
			t.Errorf("body = %v, want ok:true", body)
		}
	})

	t.Run("second delete is not found", func(t *testing.T) {
		c, rec := newContext(e, http.MethodDelete, "/api/notes/1", "", acmeClaims)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(created.ID))
		if err := h.Delete(c); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestNoteGet_UnparseableID(t *testing.T) {
	h, _ := newNoteFixture()
	e := newEcho()

	c, rec := newContext(e, http.MethodGet, "/api/notes/abc", "", acmeClaims)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
