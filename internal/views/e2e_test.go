package views

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/itam/internal/api"
	"github.com/starford/itam/internal/apiclient"
	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/testutil"
)

var _ Gateway = (*apiclient.Client)(nil)

func TestAssetsViewOverHTTP(t *testing.T) {
	svc := itamservice.NewService(testutil.TestDB(t), time.Hour)
	srv := httptest.NewServer(api.NewRouter(svc, true, 5, nil))
	t.Cleanup(srv.Close)
	ctx := context.Background()
	if _, err := svc.BootstrapAdmin(ctx, "root", "rootpw"); err != nil {
		t.Fatal(err)
	}
	client := apiclient.New(srv.URL, srv.Client())
	sess, err := client.Login(ctx, "root", "rootpw")
	if err != nil {
		t.Fatal(err)
	}

	v := NewAssetsView(client)
	if err := v.Load(ctx, sess); err != nil {
		t.Fatal(err)
	}
	for _, h := range []string{"PC-1", "PC-2"} {
		if _, err := v.Create(ctx, sess, map[string]any{"hostname": h, "serial": "SN-" + h, "location": "Paris"}); err != nil {
			t.Fatalf("Create %s: %v", h, err)
		}
	}
	if n := v.Notice(); n.Text != "Asset created successfully!" {
		t.Errorf("notice = %+v", n)
	}
	if p := v.Page(); p.Total != 2 || p.Items[0].Field("hostname") != "PC-1" {
		t.Errorf("page = %+v", p)
	}

	_, err = v.Create(ctx, sess, map[string]any{"hostname": "PC-3", "serial": "SN-PC-1"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate err = %v", err)
	}
	if n := v.Notice(); n.Kind != NoticeError || n.Text != "This serial already exists. Please use a different serial." {
		t.Errorf("notice = %+v", n)
	}
	if len(v.Records()) != 2 {
		t.Errorf("records = %d", len(v.Records()))
	}

	dash, err := NewDashboard(client).Load(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if dash.Assets != 2 || dash.Users != 1 {
		t.Errorf("dashboard = %+v", dash)
	}
}
