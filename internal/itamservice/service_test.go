package itamservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
	"github.com/starford/itam/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

type event struct {
	resource, action string
	id               int64
}

func newTestService(t *testing.T) (*Service, *[]event) {
	t.Helper()
	svc := NewService(testutil.TestDB(t), time.Hour)
	var events []event
	svc.OnChange(func(resource, action string, id int64) {
		events = append(events, event{resource, action, id})
	})
	return svc, &events
}

func mustUser(t *testing.T, svc *Service, name, role string) *models.User {
	t.Helper()
	ctx := session.WithIdentity(context.Background(), SystemIdentity)
	u, err := svc.CreateUser(ctx, models.UserCreate{Username: name, Password: "pw-" + name, Role: &role})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "jane", session.RoleUser)

	if _, err := svc.Login(ctx, "jane", "wrong"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("bad password err = %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "x"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("unknown user err = %v", err)
	}

	token, err := svc.Login(ctx, "jane", "pw-jane")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.ID != u.ID || id.Username != "jane" || id.IsAdmin() {
		t.Errorf("identity = %+v", id)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("after logout err = %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	svc, _ := newTestService(t)
	mustUser(t, svc, "jane", session.RoleUser)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	token, err := svc.Login(context.Background(), "jane", "pw-jane")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestAssetMutationsRequireCaller(t *testing.T) {
	svc, events := newTestService(t)
	if _, err := svc.CreateAsset(context.Background(), models.AssetInput{Hostname: "PC"}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous create err = %v", err)
	}

	ctx := testutil.As(1, "jane", session.RoleUser)
	a, err := svc.CreateAsset(ctx, models.AssetInput{Hostname: "PC"})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	if _, err := svc.CreateAsset(ctx, models.AssetInput{Hostname: ""}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty hostname err = %v", err)
	}
	if err := svc.DeleteAsset(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	want := []event{{"assets", ActionCreated, a.ID}, {"assets", ActionDeleted, a.ID}}
	if len(*events) != 2 || (*events)[0] != want[0] || (*events)[1] != want[1] {
		t.Errorf("events = %v, want %v", *events, want)
	}
}

func TestUserRules(t *testing.T) {
	svc, _ := newTestService(t)
	admin := mustUser(t, svc, "root", session.RoleAdmin)
	jane := mustUser(t, svc, "jane", session.RoleUser)
	bob := mustUser(t, svc, "bob", session.RoleUser)

	asJane := testutil.As(jane.ID, "jane", session.RoleUser)
	asAdmin := testutil.As(admin.ID, "root", session.RoleAdmin)

	if _, err := svc.UpdateUser(asJane, jane.ID, models.UserUpdate{Role: ptr("admin")}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-admin role change err = %v", err)
	}
	if _, err := svc.UpdateUser(asJane, bob.ID, models.UserUpdate{Fullname: ptr("Bob")}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("edit other err = %v", err)
	}
	u, err := svc.UpdateUser(asJane, jane.ID, models.UserUpdate{Fullname: ptr("Jane Doe")})
	if err != nil || u.Fullname == nil || *u.Fullname != "Jane Doe" {
		t.Errorf("self edit = %+v, %v", u, err)
	}
	if _, err := svc.UpdateUser(asAdmin, bob.ID, models.UserUpdate{Role: ptr("admin")}); err != nil {
		t.Errorf("admin role change: %v", err)
	}

	if err := svc.DeleteUser(asJane, bob.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-admin delete err = %v", err)
	}
	err = svc.DeleteUser(asAdmin, admin.ID)
	if !errors.Is(err, apperr.ErrBadRequest) || apperr.Detail(err) != "You cannot delete your own account" {
		t.Errorf("self delete err = %v", err)
	}
	if err := svc.DeleteUser(asAdmin, bob.ID); err != nil {
		t.Errorf("admin delete: %v", err)
	}
	if err := svc.DeleteUser(asAdmin, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete missing err = %v", err)
	}
}

func TestAnonymousCannotRegisterAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	role := session.RoleAdmin
	_, err := svc.CreateUser(context.Background(), models.UserCreate{Username: "eve", Password: "evepw", Role: &role})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	mustUser(t, svc, "jane", session.RoleUser)
	_, err := svc.CreateUser(context.Background(), models.UserCreate{Username: "jane", Password: "pw12"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if apperr.Message(err, "user") != "This username already exists. Please use a different username." {
		t.Errorf("message = %q", apperr.Message(err, "user"))
	}
}

func TestTicketVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	admin := mustUser(t, svc, "root", session.RoleAdmin)
	jane := mustUser(t, svc, "jane", session.RoleUser)
	bob := mustUser(t, svc, "bob", session.RoleUser)

	asJane := testutil.As(jane.ID, "jane", session.RoleUser)
	asBob := testutil.As(bob.ID, "bob", session.RoleUser)
	asAdmin := testutil.As(admin.ID, "root", session.RoleAdmin)

	tj, err := svc.CreateTicket(asJane, models.TicketInput{Title: "VPN down"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if tj.UserID == nil || *tj.UserID != jane.ID {
		t.Errorf("ticket should default to the caller, got %v", tj.UserID)
	}
	if _, err := svc.CreateTicket(asBob, models.TicketInput{Title: "Mouse"}); err != nil {
		t.Fatal(err)
	}

	mine, _ := svc.ListTickets(asJane)
	if len(mine) != 1 || mine[0].ID != tj.ID {
		t.Errorf("jane sees %d tickets", len(mine))
	}
	all, _ := svc.ListTickets(asAdmin)
	if len(all) != 2 {
		t.Errorf("admin sees %d tickets", len(all))
	}

	if _, err := svc.GetTicket(asBob, tj.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bob view jane's ticket err = %v", err)
	}
	if _, err := svc.UpdateTicket(asBob, tj.ID, models.TicketInput{Title: "x"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bob edit err = %v", err)
	}
	if err := svc.DeleteTicket(asBob, tj.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bob delete err = %v", err)
	}
	if err := svc.DeleteTicket(asAdmin, tj.ID); err != nil {
		t.Errorf("admin delete: %v", err)
	}
}

func TestTicketLinksMustExist(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testutil.As(0, "system", session.RoleAdmin)

	_, err := svc.CreateTicket(ctx, models.TicketInput{Title: "x", AssetID: ptr(int64(42))})
	if !errors.Is(err, apperr.ErrBadRequest) || apperr.Detail(err) != "Linked asset does not exist" {
		t.Errorf("missing asset err = %v", err)
	}
	_, err = svc.CreateTicket(ctx, models.TicketInput{Title: "x", UserID: ptr(int64(42))})
	if !errors.Is(err, apperr.ErrBadRequest) || apperr.Detail(err) != "Linked user does not exist" {
		t.Errorf("missing user err = %v", err)
	}
}

func TestRecordsAndStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testutil.As(0, "system", session.RoleAdmin)
	for _, h := range []string{"a", "b"} {
		if _, err := svc.CreateAsset(ctx, models.AssetInput{Hostname: h}); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := svc.Records(ctx, "assets")
	if err != nil || len(recs) != 2 || recs[0].Field("hostname") != "a" {
		t.Fatalf("Records = %v, %v", recs, err)
	}
	if _, err := svc.Records(ctx, "printers"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown resource err = %v", err)
	}
	st, err := svc.Stats(ctx)
	if err != nil || st.Assets != 2 {
		t.Errorf("Stats = %+v, %v", st, err)
	}
}

func TestBootstrapAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.BootstrapAdmin(ctx, "admin", "changeme")
	if err != nil || !created {
		t.Fatalf("first bootstrap = %v, %v", created, err)
	}
	created, err = svc.BootstrapAdmin(ctx, "admin2", "changeme")
	if err != nil || created {
		t.Errorf("second bootstrap = %v, %v", created, err)
	}
	token, err := svc.Login(ctx, "admin", "changeme")
	if err != nil {
		t.Fatal(err)
	}
	id, _ := svc.Authenticate(ctx, token)
	if !id.IsAdmin() {
		t.Errorf("bootstrap user role = %q", id.Role)
	}
}
