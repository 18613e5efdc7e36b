package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/itam/internal/api"
	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/session"
	"github.com/starford/itam/internal/testutil"
)

func testServer(t *testing.T) (*Client, *itamservice.Service) {
	t.Helper()
	svc := itamservice.NewService(testutil.TestDB(t), time.Hour)
	srv := httptest.NewServer(api.NewRouter(svc, true, 5, nil))
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client()), svc
}

func adminSession(t *testing.T, c *Client, svc *itamservice.Service) session.Session {
	t.Helper()
	if _, err := svc.BootstrapAdmin(context.Background(), "root", "rootpw"); err != nil {
		t.Fatal(err)
	}
	sess, err := c.Login(context.Background(), "root", "rootpw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return sess
}

func TestLoginResolvesIdentity(t *testing.T) {
	c, svc := testServer(t)
	sess := adminSession(t, c, svc)
	if !sess.Authenticated() || !sess.CanMutate() || !sess.Identity.IsAdmin() || sess.Identity.Username != "root" {
		t.Errorf("session = %+v", sess)
	}

	_, err := c.Login(context.Background(), "root", "wrong")
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("bad login err = %v", err)
	}
}

func TestCRUDRoundTrip(t *testing.T) {
	c, svc := testServer(t)
	sess := adminSession(t, c, svc)
	ctx := context.Background()

	rec, err := c.Create(ctx, sess, "assets", map[string]any{"hostname": "PC-1", "location": "Paris"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id, ok := rec.ID()
	if !ok || rec.Field("hostname") != "PC-1" || rec.Field("status") != "active" {
		t.Fatalf("created = %v", rec)
	}

	rec, err = c.Update(ctx, sess, "assets", id, map[string]any{"hostname": "PC-1", "location": "Lyon"})
	if err != nil || rec.Field("location") != "Lyon" {
		t.Fatalf("Update = %v, %v", rec, err)
	}

	list, err := c.List(ctx, sess, "assets")
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if got, _ := list[0].ID(); got != id {
		t.Errorf("listed id = %d, want %d", got, id)
	}

	if err := c.Delete(ctx, sess, "assets", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = c.Delete(ctx, sess, "assets", id)
	if !errors.Is(err, apperr.ErrNotFound) || apperr.Message(err, "asset") != "Asset not found." {
		t.Errorf("second delete err = %v", err)
	}
}

func TestDuplicateIsConflict(t *testing.T) {
	c, svc := testServer(t)
	sess := adminSession(t, c, svc)
	ctx := context.Background()
	if _, err := c.Create(ctx, sess, "assets", map[string]any{"hostname": "A", "serial": "S1"}); err != nil {
		t.Fatal(err)
	}
	_, err := c.Create(ctx, sess, "assets", map[string]any{"hostname": "B", "serial": "S1"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if got := apperr.Message(err, "asset"); got != "This serial already exists. Please use a different serial." {
		t.Errorf("message = %q", got)
	}
}

func TestValidationDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","hostname"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	_, err := c.Create(context.Background(), session.Session{Token: "t"}, "assets", map[string]any{})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if apperr.Message(err, "asset") != "Invalid data provided. Please check your input." {
		t.Errorf("message = %q", apperr.Message(err, "asset"))
	}
}

func TestMutationWithoutTokenFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	ctx := context.Background()
	anon := session.Anonymous()
	if _, err := c.Create(ctx, anon, "assets", map[string]any{"hostname": "x"}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Create err = %v", err)
	}
	if _, err := c.Update(ctx, anon, "assets", 1, nil); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Update err = %v", err)
	}
	if err := c.Delete(ctx, anon, "assets", 1); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Delete err = %v", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server was called %d times", n)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base, nil)
	_, err := c.List(context.Background(), session.Anonymous(), "assets")
	if !errors.Is(err, apperr.ErrTransport) {
		t.Fatalf("err = %v, want transport", err)
	}
	if got := apperr.Message(err, "asset"); got != "Unable to reach the server. Please check your connection." {
		t.Errorf("message = %q", got)
	}
}

func TestStats(t *testing.T) {
	c, svc := testServer(t)
	sess := adminSession(t, c, svc)
	ctx := context.Background()
	_, _ = c.Create(ctx, sess, "assets", map[string]any{"hostname": "A"})
	_, _ = c.Create(ctx, sess, "tickets", map[string]any{"title": "t"})

	st, err := c.Stats(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if st.Assets != 1 || st.Users != 1 || st.OpenTickets != 1 {
		t.Errorf("stats = %+v", st)
	}
}
