package economy

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/onnwee/chat-thief/db"
	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/draw"
	"github.com/onnwee/chat-thief/parse"
	"github.com/onnwee/chat-thief/testutil"
)

// TestEconomyOnSQLBackends runs a buy and a steal against real SQL stores.
// The Postgres case skips unless TEST_PG_DSN is set.
func TestEconomyOnSQLBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) docstore.Store{
		"sqlite": func(t *testing.T) docstore.Store { return testutil.NewSQLiteStore(t) },
		"postgres": func(t *testing.T) docstore.Store {
			return docstore.NewSQL(testutil.SetupTestDB(t), db.DialectPostgres)
		},
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			// unique names keep reruns against a shared Postgres independent
			suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
			thief, victim, sfx := "thief"+suffix, "victim"+suffix, "clap"+suffix

			ledger := NewLedger(store, 3)
			r := &testutil.SeqRand{Floats: []float64{0.99}}
			eco := New(ledger, &draw.Picker{Rand: r, Pool: fixedPool{thief, victim}}, DefaultPolicy(), nil)

			if _, err := ledger.Seed(ctx, []string{sfx}); err != nil {
				t.Fatal(err)
			}
			if _, err := ledger.AddCoolPoints(ctx, victim, 2); err != nil {
				t.Fatal(err)
			}
			res, err := eco.Buy(ctx, victim, parse.Named(sfx), 1)
			if err != nil || !res.OK() {
				t.Fatalf("Buy = %+v, %v", res, err)
			}

			res, err = eco.Steal(ctx, thief, parse.Named(victim), parse.Named(sfx))
			if err != nil || !res.OK() {
				t.Fatalf("Steal = %+v, %v", res, err)
			}
			c, err := ledger.Command(ctx, sfx)
			if err != nil {
				t.Fatal(err)
			}
			if !c.Allows(thief) || c.Allows(victim) || c.Cost != 4 {
				t.Errorf("command after steal = %+v", c)
			}
			u, err := ledger.User(ctx, thief)
			if err != nil {
				t.Fatal(err)
			}
			if u.Mana != 2 {
				t.Errorf("thief mana = %d, want 2", u.Mana)
			}

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := ledger.AddCoolPoints(ctx, thief, 1); err != nil {
						t.Error(err)
					}
				}()
			}
			wg.Wait()
			u, err = ledger.User(ctx, thief)
			if err != nil {
				t.Fatal(err)
			}
			if u.CoolPoints != 20 {
				t.Errorf("cool points after concurrent adds = %d, want 20", u.CoolPoints)
			}
		})
	}
}
