package views

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
)

// Dashboard computes the home page counters from the three collections.
type Dashboard struct {
	gw Gateway
}

// NewDashboard returns a dashboard reading through gw.
func NewDashboard(gw Gateway) *Dashboard {
	return &Dashboard{gw: gw}
}

// Load fetches assets, users and tickets concurrently. Any failure fails the
// whole load.
func (d *Dashboard) Load(ctx context.Context, sess session.Session) (models.Stats, error) {
	var assets, users, tickets []listengine.Record

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		assets, err = d.gw.List(ctx, sess, listengine.AssetSchema.Name)
		return err
	})
	g.Go(func() (err error) {
		users, err = d.gw.List(ctx, sess, listengine.UserSchema.Name)
		return err
	})
	g.Go(func() (err error) {
		tickets, err = d.gw.List(ctx, sess, listengine.TicketSchema.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Stats{}, err
	}

	st := models.Stats{Assets: len(assets), Users: len(users)}
	for _, t := range tickets {
		if strings.EqualFold(t.Field("status"), "open") {
			st.OpenTickets++
		}
	}
	return st, nil
}
