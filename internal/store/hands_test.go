package store

import (
	"fmt"
	"testing"

	"github.com/samansohani78/private-poker/internal/game"
)

func TestInsertAndListHandResults(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	for i := uint64(1); i <= 3; i++ {
		res := &game.HandResult{
			TableID: "tbl1",
			HandID:  fmt.Sprintf("tbl1-h%06d", i),
			HandNo:  i,
			Street:  game.StreetRiver,
			Board:   []string{"As", "Kd", "7h", "2c", "9s"},
			Awards:  []game.PotAward{{Amount: 100, Seats: []int{0}, UserIDs: []string{"u1"}, Reason: "main_pot"}},
		}
		if err := st.InsertHandResult(ctx, res); err != nil {
			t.Fatalf("insert hand %d: %v", i, err)
		}
		// Replays are ignored.
		if err := st.InsertHandResult(ctx, res); err != nil {
			t.Fatalf("replay hand %d: %v", i, err)
		}
	}

	out, err := st.ListHandResults(ctx, "tbl1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 hands, got %d", len(out))
	}
	if out[0].HandNo != 3 || out[1].HandNo != 2 {
		t.Fatalf("expected newest first, got %d then %d", out[0].HandNo, out[1].HandNo)
	}
	if len(out[0].Awards) != 1 || out[0].Awards[0].Reason != "main_pot" {
		t.Fatalf("award round trip: %+v", out[0].Awards)
	}
}
