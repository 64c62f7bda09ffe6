package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func testSettings() GameSettings {
	return GameSettings{
		SmallBlind:    10,
		BigBlind:      20,
		MinBuyIn:      50,
		MaxSeats:      9,
		ActionTimeout: 30 * time.Second,
	}
}

func mustAdvance(t *testing.T, s *PokerState) {
	t.Helper()
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
}

func mustApply(t *testing.T, s *PokerState, userID string, a Action) {
	t.Helper()
	if err := s.ApplyAction(userID, a); err != nil {
		t.Fatalf("%s %s: %v", userID, a.Type, err)
	}
	mustAdvance(t, s)
}

// startTable seats the given buy-ins in order and deals the first hand.
func startTable(t *testing.T, buyIns ...int64) *PokerState {
	t.Helper()
	s := NewPokerState("tbl_test", testSettings(), rand.New(rand.NewSource(1)))
	names := []string{"a", "b", "c", "d", "e"}
	for i, amount := range buyIns {
		if err := s.AddPlayer(names[i], amount); err != nil {
			t.Fatalf("add %s: %v", names[i], err)
		}
	}
	s.RequestStart()
	mustAdvance(t, s)
	if s.Phase != PhaseTakeAction {
		t.Fatalf("expected first hand to be dealt, phase %s", s.Phase)
	}
	return s
}

func TestHeadsUpHandFlow(t *testing.T) {
	s := startTable(t, 1000, 1000)

	// Button posts the small blind heads-up and acts first preflop.
	if s.Button != 0 || s.Actor != 0 {
		t.Fatalf("button %d actor %d", s.Button, s.Actor)
	}
	ch := s.Choices()
	if !ch.CanFold || ch.CanCheck || !ch.CanCall || ch.CallAmount != 10 {
		t.Fatalf("preflop choices: %+v", ch)
	}
	if !ch.CanRaise || ch.MinRaiseTo != 40 || ch.MaxRaiseTo != 1000 {
		t.Fatalf("preflop raise bounds: %+v", ch)
	}

	mustApply(t, s, "a", Action{Type: ActionCall})
	// The big blind keeps the option to act even with bets matched.
	if s.Actor != 1 {
		t.Fatalf("big blind should hold the option, actor %d", s.Actor)
	}
	mustApply(t, s, "b", Action{Type: ActionCheck})

	if len(s.Community) != 3 || s.Street != StreetFlop {
		t.Fatalf("expected flop, community %v street %s", s.Community, s.Street)
	}
	// Postflop the non-button seat acts first.
	if s.Actor != 1 {
		t.Fatalf("flop actor %d", s.Actor)
	}

	mustApply(t, s, "b", Action{Type: ActionBet, Amount: 50})
	mustApply(t, s, "a", Action{Type: ActionRaise, Amount: 150})
	mustApply(t, s, "b", Action{Type: ActionFold})

	// Hand 1 finished and hand 2 dealt in the same advance.
	if s.HandNo != 2 {
		t.Fatalf("expected hand 2 live, got %d", s.HandNo)
	}
	res := s.LastResult
	if res == nil || res.HandNo != 1 {
		t.Fatalf("last result: %+v", res)
	}
	if len(res.Awards) != 1 {
		t.Fatalf("awards: %+v", res.Awards)
	}
	award := res.Awards[0]
	if award.Amount != 240 || award.Reason != "uncontested" || len(award.UserIDs) != 1 || award.UserIDs[0] != "a" {
		t.Fatalf("award: %+v", award)
	}
	if len(res.Showdown) != 0 {
		t.Fatalf("fold-out should not reveal hands: %+v", res.Showdown)
	}

	drained := s.DrainResults()
	if len(drained) != 1 || drained[0] != res {
		t.Fatalf("drained results: %+v", drained)
	}

	// Button moved, blinds for hand 2 are posted.
	if s.Button != 1 {
		t.Fatalf("button should move to seat 1, got %d", s.Button)
	}
	total := s.PotTotal()
	for _, p := range s.Seats {
		if p != nil {
			total += p.Stack
		}
	}
	if total != 2000 {
		t.Fatalf("chips not conserved: %d", total)
	}
}

func TestShortAllInBuildsSidePot(t *testing.T) {
	s := startTable(t, 1000, 1000, 60)

	mustApply(t, s, "a", Action{Type: ActionRaise, Amount: 200})
	mustApply(t, s, "b", Action{Type: ActionFold})
	// c calls all-in for 40 more; the remaining streets run out on their own.
	mustApply(t, s, "c", Action{Type: ActionCall})

	res := s.LastResult
	if res == nil || res.HandNo != 1 {
		t.Fatalf("hand should have run to completion: %+v", res)
	}
	if len(res.Board) != 5 || res.Street != StreetRiver {
		t.Fatalf("expected a full runout, board %v street %s", res.Board, res.Street)
	}
	if len(res.Showdown) != 2 {
		t.Fatalf("two live hands should show down: %+v", res.Showdown)
	}

	var total int64
	for _, award := range res.Awards {
		total += award.Amount
	}
	if total != 270 {
		t.Fatalf("awards should pay out the whole pot, got %d: %+v", total, res.Awards)
	}
	// The 140 above the short stack's level is contested by a alone.
	var side *PotAward
	for i := range res.Awards {
		if res.Awards[i].Amount == 140 {
			side = &res.Awards[i]
		}
	}
	if side == nil || len(side.UserIDs) != 1 || side.UserIDs[0] != "a" {
		t.Fatalf("side pot award: %+v", res.Awards)
	}

	chips := s.PotTotal()
	for _, p := range s.Seats {
		if p != nil {
			chips += p.Stack
		}
	}
	for _, rel := range s.DrainReleases() {
		chips += rel.Amount
	}
	if chips != 2060 {
		t.Fatalf("chips not conserved: %d", chips)
	}
}

func TestSplitPotOddChipGoesLeftOfButton(t *testing.T) {
	s := NewPokerState("tbl_test", testSettings(), rand.New(rand.NewSource(1)))
	s.Seats[0] = &Player{UserID: "a", Seat: 0, Status: StatusAllIn, TotalContrib: 50}
	s.Seats[1] = &Player{UserID: "b", Seat: 1, Status: StatusAllIn, TotalContrib: 50}
	s.Seats[2] = &Player{UserID: "c", Seat: 2, Stack: 449, Status: StatusFolded, TotalContrib: 1}
	s.Button = 1
	s.handStartChips = 550
	same := HandRank{Category: CategoryPair, Ranks: []int{10, 14, 9, 5}}
	s.showdownRanks = map[int]HandRank{0: same, 1: same}

	if err := s.distributePots(); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	// 101 chips split two ways: the odd chip lands on the first winner
	// clockwise from the button.
	if s.Seats[0].Stack != 51 || s.Seats[1].Stack != 50 {
		t.Fatalf("split stacks: %d / %d", s.Seats[0].Stack, s.Seats[1].Stack)
	}
	res := s.LastResult
	if len(res.Awards) != 1 || res.Awards[0].Amount != 101 || res.Awards[0].Reason != "main_pot" {
		t.Fatalf("award: %+v", res.Awards)
	}
}

func TestDeadSliceRefundsEveryContributor(t *testing.T) {
	// a is all-in for 100; b and c each committed 200 and then both left
	// mid-hand. The 100..200 slice has no eligible winner and must go back
	// to b and c in equal parts, not to whichever contributor sorts first.
	s := NewPokerState("tbl_test", testSettings(), rand.New(rand.NewSource(1)))
	s.Seats[0] = &Player{UserID: "a", Seat: 0, Status: StatusAllIn, TotalContrib: 100}
	s.Seats[1] = &Player{UserID: "b", Seat: 1, Status: StatusFolded, Leaving: true, TotalContrib: 200}
	s.Seats[2] = &Player{UserID: "c", Seat: 2, Status: StatusFolded, Leaving: true, TotalContrib: 200}
	s.handStartChips = 500

	if err := s.distributePots(); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if s.Seats[0].Stack != 300 {
		t.Fatalf("a should take the 300 main pot, got %d", s.Seats[0].Stack)
	}
	if s.Seats[1].Stack != 100 || s.Seats[2].Stack != 100 {
		t.Fatalf("dead slice refund: b=%d c=%d, want 100 each",
			s.Seats[1].Stack, s.Seats[2].Stack)
	}

	res := s.LastResult
	if len(res.Awards) != 2 {
		t.Fatalf("awards: %+v", res.Awards)
	}
	refund := res.Awards[1]
	if refund.Amount != 200 || refund.Reason != "returned" {
		t.Fatalf("refund award: %+v", refund)
	}
	if len(refund.UserIDs) != 2 || refund.UserIDs[0] != "b" || refund.UserIDs[1] != "c" {
		t.Fatalf("refund recipients: %+v", refund.UserIDs)
	}
}

func TestConservationBreachSurfaces(t *testing.T) {
	s := NewPokerState("tbl_test", testSettings(), rand.New(rand.NewSource(1)))
	s.Seats[0] = &Player{UserID: "a", Seat: 0, Status: StatusActive, TotalContrib: 50, Stack: 100}
	s.Seats[1] = &Player{UserID: "b", Seat: 1, Status: StatusFolded, TotalContrib: 50, Stack: 100}
	s.handStartChips = 299 // one chip off on purpose

	err := s.distributePots()
	if !errors.Is(err, ErrConservation) {
		t.Fatalf("expected conservation error, got %v", err)
	}
}

func TestRejectedActionsLeaveStateUntouched(t *testing.T) {
	s := startTable(t, 1000, 1000)

	if err := s.ApplyAction("b", Action{Type: ActionCall}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out of turn: %v", err)
	}
	if err := s.ApplyAction("zz", Action{Type: ActionFold}); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("unknown user: %v", err)
	}
	if err := s.ApplyAction("a", Action{Type: ActionCheck}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("check facing a bet: %v", err)
	}
	if err := s.ApplyAction("a", Action{Type: ActionRaise, Amount: 39}); !errors.Is(err, ErrBetOutOfRange) {
		t.Fatalf("below min raise: %v", err)
	}
	if err := s.ApplyAction("a", Action{Type: ActionRaise, Amount: 1001}); !errors.Is(err, ErrBetOutOfRange) {
		t.Fatalf("above stack: %v", err)
	}

	if s.Actor != 0 || s.Seats[0].Stack != 990 || s.CurrentBet != 20 {
		t.Fatalf("state mutated by rejected actions: actor %d stack %d bet %d",
			s.Actor, s.Seats[0].Stack, s.CurrentBet)
	}
}

func TestActionBeforeStartIsWrongPhase(t *testing.T) {
	s := NewPokerState("tbl_test", testSettings(), rand.New(rand.NewSource(1)))
	if err := s.AddPlayer("a", 1000); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.ApplyAction("a", Action{Type: ActionFold}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected wrong phase, got %v", err)
	}
}

func TestNoRaiseAgainstAllInOnlyOpponents(t *testing.T) {
	s := NewPokerState("tbl_test", testSettings(), rand.New(rand.NewSource(1)))
	s.Seats[0] = &Player{UserID: "a", Seat: 0, Stack: 500, Status: StatusActive}
	s.Seats[1] = &Player{UserID: "b", Seat: 1, Status: StatusAllIn, RoundBet: 300, TotalContrib: 300}
	s.Phase = PhaseTakeAction
	s.Actor = 0
	s.CurrentBet = 300
	s.LastRaise = 300

	ch := s.Choices()
	if !ch.CanCall || ch.CallAmount != 300 {
		t.Fatalf("call: %+v", ch)
	}
	if ch.CanRaise {
		t.Fatalf("raising a lone all-in opponent should not be offered: %+v", ch)
	}
}

func TestDefaultActionChecksWhenFree(t *testing.T) {
	s := startTable(t, 1000, 1000)
	if got := s.DefaultAction(); got.Type != ActionFold {
		t.Fatalf("facing the blind, default should fold: %+v", got)
	}
	mustApply(t, s, "a", Action{Type: ActionCall})
	if got := s.DefaultAction(); got.Type != ActionCheck {
		t.Fatalf("nothing to call, default should check: %+v", got)
	}
}

func TestLeaveMidHandFoldsAndReleasesAfter(t *testing.T) {
	s := startTable(t, 1000, 1000)

	releases, err := s.MarkLeaving("a")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(releases) != 0 {
		t.Fatalf("mid-hand leave must wait for the hand to end: %+v", releases)
	}
	mustAdvance(t, s)

	// With one player left the hand resolves; the table then parks in the
	// lobby since a heads-up table lost half its field.
	if s.Phase != PhaseLobby {
		t.Fatalf("phase %s", s.Phase)
	}
	drained := s.DrainReleases()
	if len(drained) != 1 || drained[0].UserID != "a" || drained[0].Amount != 990 {
		t.Fatalf("releases: %+v", drained)
	}
	if s.Seats[1] == nil || s.Seats[1].Stack != 1010 {
		t.Fatalf("winner stack: %+v", s.Seats[1])
	}
}

func TestSetBlindsAppliesBetweenHands(t *testing.T) {
	s := startTable(t, 1000, 1000)
	s.SetBlinds(25, 50)
	if s.Settings.BigBlind != 20 {
		t.Fatalf("blind change must not touch the live hand")
	}
	mustApply(t, s, "a", Action{Type: ActionFold})

	if s.HandNo != 2 {
		t.Fatalf("expected hand 2, got %d", s.HandNo)
	}
	if s.Settings.SmallBlind != 25 || s.Settings.BigBlind != 50 {
		t.Fatalf("blinds: %d/%d", s.Settings.SmallBlind, s.Settings.BigBlind)
	}
	if s.CurrentBet != 50 {
		t.Fatalf("hand 2 should be played at the new blinds, current bet %d", s.CurrentBet)
	}
}

func TestBlindScheduleRaisesByHandCount(t *testing.T) {
	settings := testSettings()
	settings.BlindSchedule = []BlindLevel{{AfterHands: 1, SmallBlind: 100, BigBlind: 200}}
	s := NewPokerState("tbl_test", settings, rand.New(rand.NewSource(1)))
	for _, name := range []string{"a", "b"} {
		if err := s.AddPlayer(name, 1000); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	s.RequestStart()
	mustAdvance(t, s)
	mustApply(t, s, "a", Action{Type: ActionFold})

	if s.Settings.BigBlind != 200 {
		t.Fatalf("schedule not applied: %+v", s.Settings)
	}
}
