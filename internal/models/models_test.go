package models

import (
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestAssetInput_Validate(t *testing.T) {
	ok := AssetInput{Hostname: "PC-1", Status: ptr("inactive"), PurchasedAt: ptr("2024-02-29")}
	ok.Normalize()
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid asset rejected: %v", err)
	}

	bad := []AssetInput{
		{Hostname: ""},
		{Hostname: "PC", Status: ptr("broken")},
		{Hostname: "PC", PurchasedAt: ptr("29/02/2024")},
	}
	for _, in := range bad {
		in.Normalize()
		if err := in.Validate(); err == nil {
			t.Errorf("invalid asset accepted: %+v", in)
		}
	}
}

func TestAssetInput_NormalizeDefaults(t *testing.T) {
	in := AssetInput{Hostname: "PC", Serial: ptr(""), Status: ptr("")}
	in.Normalize()
	if in.Serial != nil {
		t.Error("empty serial should become nil")
	}
	if in.Status == nil || *in.Status != AssetActive {
		t.Errorf("status = %v, want active", in.Status)
	}
}

func TestUserCreate_Validate(t *testing.T) {
	in := UserCreate{Username: "jane", Email: ptr("jane@corp.io"), Password: "s3cret"}
	in.Normalize()
	if err := in.Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}
	if in.Role == nil || *in.Role != "user" || in.IsActive == nil || !*in.IsActive {
		t.Errorf("defaults not applied: role=%v active=%v", in.Role, in.IsActive)
	}

	bad := UserCreate{Username: "x", Email: ptr("not-an-email"), Password: "s3cret"}
	if err := bad.Validate(); err == nil {
		t.Error("bad email accepted")
	}
	badRole := UserCreate{Username: "x", Role: ptr("root"), Password: "s3cret"}
	if err := badRole.Validate(); err == nil {
		t.Error("bad role accepted")
	}
}

func TestTicketInput_Defaults(t *testing.T) {
	in := TicketInput{Title: "Printer jam"}
	in.Normalize()
	if err := in.Validate(); err != nil {
		t.Fatalf("valid ticket rejected: %v", err)
	}
	if *in.Status != TicketOpen || *in.Priority != PriorityMedium {
		t.Errorf("defaults = %s/%s", *in.Status, *in.Priority)
	}
	bad := TicketInput{Title: "x", Priority: ptr("urgent")}
	if err := bad.Validate(); err == nil {
		t.Error("bad priority accepted")
	}
}

func TestTicketRecordEmbedsUser(t *testing.T) {
	tk := Ticket{ID: 4, Title: "VPN", Status: TicketOpen, Priority: PriorityLow, User: &User{ID: 2, Username: "jane"}}
	r := tk.Record()
	if r.Field("user.username") != "jane" {
		t.Errorf("user.username = %q", r.Field("user.username"))
	}
	if r.Field("description") != "" || r.Field("asset_id") != "" {
		t.Error("nil optional fields should render empty")
	}
}
