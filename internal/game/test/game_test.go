package main

import (
	"testing"
	"time"

	"vortcheno/internal/constants"
	"vortcheno/internal/game"
)

var testChain = []string{"GOOD", "TIME", "OUT", "SIDE", "WALK"}

func testSession(t *testing.T) *game.Session {
	t.Helper()
	sess, err := game.NewSession(testChain, game.Options{RevertDelay: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

// typeRest types every character of the solution after the revealed
// hint prefix into the selected slot.
func typeRest(sess *game.Session, index int) {
	slot := sess.Slots[index]
	for i := slot.HintsRevealed; i < len(slot.Word); i++ {
		sess.TypeChar(string(slot.Word[i]))
	}
}

func TestNewSessionLayout(t *testing.T) {
	sess := testSession(t)

	if len(sess.Slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(sess.Slots))
	}
	for _, i := range []int{0, 4} {
		if sess.Slots[i].Status != constants.SlotStatusSolved {
			t.Errorf("boundary slot %d should be solved, got %s", i, sess.Slots[i].Status)
		}
	}
	for _, i := range []int{1, 2, 3} {
		slot := sess.Slots[i]
		if slot.Status != constants.SlotStatusUnsolved {
			t.Errorf("interior slot %d should be unsolved, got %s", i, slot.Status)
		}
		if slot.HintsRevealed != 1 || slot.Cursor != 1 {
			t.Errorf("slot %d: hints=%d cursor=%d, want 1/1", i, slot.HintsRevealed, slot.Cursor)
		}
		if slot.Input[0] != string(slot.Word[0]) {
			t.Errorf("slot %d: first cell %q, want hint %q", i, slot.Input[0], string(slot.Word[0]))
		}
	}
	if sess.SelectedWordIndex != 1 {
		t.Errorf("SelectedWordIndex = %d, want 1", sess.SelectedWordIndex)
	}
	if sess.Lives != constants.StartingLives {
		t.Errorf("Lives = %d, want %d", sess.Lives, constants.StartingLives)
	}
	if sess.Capacity != constants.MinSlotCapacity {
		t.Errorf("Capacity = %d, want floor %d", sess.Capacity, constants.MinSlotCapacity)
	}
}

func TestNewSessionTooShort(t *testing.T) {
	if _, err := game.NewSession([]string{"GOOD", "TIME"}, game.Options{}); err == nil {
		t.Error("expected error for chain with no interior words")
	}
}

func TestTypeCharAndStatus(t *testing.T) {
	sess := testSession(t)
	sess.TypeChar("i")
	slot := sess.Slots[1]
	if slot.Input[1] != "I" {
		t.Errorf("typed cell = %q, want case-normalized I", slot.Input[1])
	}
	if slot.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", slot.Cursor)
	}
	if slot.Status != constants.SlotStatusSolving {
		t.Errorf("status = %s, want solving", slot.Status)
	}
}

func TestTypeCharCapacity(t *testing.T) {
	sess := testSession(t)
	for i := 0; i < 20; i++ {
		sess.TypeChar("X")
	}
	if got := sess.Slots[1].Cursor; got != sess.Capacity {
		t.Errorf("cursor = %d, want capped at %d", got, sess.Capacity)
	}
}

func TestBackspaceNeverErasesHints(t *testing.T) {
	sess := testSession(t)
	sess.TypeChar("I")
	sess.Backspace()
	sess.Backspace()
	sess.Backspace()
	slot := sess.Slots[1]
	if slot.Cursor != slot.HintsRevealed {
		t.Errorf("cursor = %d, want floor at hints %d", slot.Cursor, slot.HintsRevealed)
	}
	if slot.Input[0] != "T" {
		t.Errorf("hint cell erased: %q", slot.Input[0])
	}
}

func TestSubmitCorrectIsIdempotentOnLives(t *testing.T) {
	sess := testSession(t)
	typeRest(sess, 1)
	sess.Submit(1)

	if sess.Slots[1].Status != constants.SlotStatusSolved {
		t.Fatalf("slot 1 status = %s, want solved", sess.Slots[1].Status)
	}
	if sess.SelectedWordIndex != 2 {
		t.Errorf("SelectedWordIndex = %d, want 2", sess.SelectedWordIndex)
	}
	if sess.Lives != 5 || sess.TotalGuesses != 1 {
		t.Errorf("lives=%d guesses=%d, want 5/1", sess.Lives, sess.TotalGuesses)
	}

	sess.Submit(1)
	if sess.Lives != 5 {
		t.Errorf("re-submit decremented lives to %d", sess.Lives)
	}
	if sess.TotalGuesses != 2 {
		t.Errorf("re-submit should still count a guess, got %d", sess.TotalGuesses)
	}
	if sess.Slots[1].Status != constants.SlotStatusSolved {
		t.Errorf("slot 1 left solved state: %s", sess.Slots[1].Status)
	}
}

func TestSubmitWrongFailurePath(t *testing.T) {
	sess := testSession(t)
	sess.TypeChar("X")
	sess.TypeChar("X")
	sess.TypeChar("X")
	sess.Submit(1)

	slot := sess.Slots[1]
	if sess.Lives != 4 {
		t.Errorf("lives = %d, want 4", sess.Lives)
	}
	if slot.HintsRevealed != 2 {
		t.Errorf("hints = %d, want 2", slot.HintsRevealed)
	}
	if slot.Cursor != slot.HintsRevealed {
		t.Errorf("cursor = %d, want %d right after failure", slot.Cursor, slot.HintsRevealed)
	}
	if slot.Status != constants.SlotStatusFailed {
		t.Errorf("status = %s, want failed", slot.Status)
	}
	if slot.Input[1] != "I" {
		t.Errorf("second hint cell = %q, want I", slot.Input[1])
	}

	time.Sleep(60 * time.Millisecond)
	if slot.Status != constants.SlotStatusUnsolved {
		t.Errorf("status = %s, want reverted to unsolved", slot.Status)
	}
}

func TestHintsCappedAtWordLength(t *testing.T) {
	sess := testSession(t)
	sess.SelectedWordIndex = 2
	for i := 0; i < 4; i++ {
		sess.TypeChar("X")
		sess.Submit(2)
	}
	slot := sess.Slots[2]
	if slot.HintsRevealed != len(slot.Word) {
		t.Errorf("hints = %d, want capped at %d", slot.HintsRevealed, len(slot.Word))
	}
	if slot.Status == constants.SlotStatusSolved {
		t.Error("wrong guesses should never solve the slot")
	}
}

func TestSubmitBoundaryIsFullNoop(t *testing.T) {
	sess := testSession(t)
	sess.Submit(0)
	sess.Submit(4)
	if sess.TotalGuesses != 0 {
		t.Errorf("boundary submit counted a guess: %d", sess.TotalGuesses)
	}
	if sess.Lives != 5 {
		t.Errorf("boundary submit touched lives: %d", sess.Lives)
	}
}

func TestGameOverOnLastLife(t *testing.T) {
	sess := testSession(t)
	for i := 0; i < 5; i++ {
		if sess.IsOver() {
			t.Fatalf("game over after only %d wrong guesses", i)
		}
		sess.TypeChar("X")
		sess.Submit(1)
	}
	if !sess.IsOver() {
		t.Fatal("expected game over after 5 wrong guesses")
	}
	if sess.Lives != 0 {
		t.Errorf("lives = %d, want 0", sess.Lives)
	}

	before := sess.TotalGuesses
	sess.Submit(1)
	sess.TypeChar("X")
	if sess.TotalGuesses != before {
		t.Error("terminal session accepted a submit")
	}
}

func solveAll(sess *game.Session) {
	for i := 1; i < len(sess.Slots)-1; i++ {
		sess.SelectedWordIndex = i
		typeRest(sess, i)
		sess.Submit(i)
	}
}

func TestCompleteAndStars(t *testing.T) {
	sess := testSession(t)
	solveAll(sess)
	if !sess.IsComplete() {
		t.Fatal("expected complete session")
	}
	if sess.StarRating() != 3 {
		t.Errorf("stars = %d, want 3 for fast full-lives win", sess.StarRating())
	}
}

func TestStarRatingTiers(t *testing.T) {
	cases := []struct {
		elapsed int
		wrong   int
		want    int
	}{
		{30, 0, 3},
		{90, 1, 2},
		{90, 3, 2},
		{200, 0, 1},
		{30, 4, 1},
	}
	for _, c := range cases {
		sess := testSession(t)
		sess.ElapsedSeconds = c.elapsed
		for i := 0; i < c.wrong; i++ {
			sess.TypeChar("X")
			sess.Submit(1)
		}
		solveAll(sess)
		if got := sess.StarRating(); got != c.want {
			t.Errorf("elapsed=%d wrong=%d: stars = %d, want %d", c.elapsed, c.wrong, got, c.want)
		}
	}
}

func TestStarRatingFrozenAfterCompletion(t *testing.T) {
	sess := testSession(t)
	solveAll(sess)
	stars := sess.StarRating()
	sess.ElapsedSeconds = 9999
	sess.Lives = 0
	if sess.StarRating() != stars {
		t.Error("star rating re-evaluated after completion")
	}
}

func TestTickStopsWhenTerminal(t *testing.T) {
	sess := testSession(t)
	sess.Tick()
	sess.Tick()
	if sess.ElapsedSeconds != 2 {
		t.Errorf("elapsed = %d, want 2", sess.ElapsedSeconds)
	}
	solveAll(sess)
	elapsed := sess.ElapsedSeconds
	sess.Tick()
	if sess.ElapsedSeconds != elapsed {
		t.Error("tick advanced a completed session")
	}
}

func TestEndToEndScenario(t *testing.T) {
	sess := testSession(t)

	for _, i := range []int{1, 2, 3} {
		if sess.Slots[i].HintsRevealed != 1 {
			t.Errorf("slot %d hints = %d, want 1", i, sess.Slots[i].HintsRevealed)
		}
	}

	// Solve TIME at index 1.
	typeRest(sess, 1)
	sess.Submit(1)
	if sess.Slots[1].Status != constants.SlotStatusSolved {
		t.Fatal("TIME not solved")
	}
	if sess.SelectedWordIndex != 2 {
		t.Errorf("selection = %d, want 2", sess.SelectedWordIndex)
	}

	// Wrong guess at index 2.
	sess.TypeChar("W")
	sess.TypeChar("L")
	sess.Submit(2)
	if sess.Lives != 4 {
		t.Errorf("lives = %d, want 4", sess.Lives)
	}
	if sess.Slots[2].HintsRevealed != 2 {
		t.Errorf("slot 2 hints = %d, want 2", sess.Slots[2].HintsRevealed)
	}
	if sess.Slots[2].Status != constants.SlotStatusFailed {
		t.Errorf("slot 2 status = %s, want failed", sess.Slots[2].Status)
	}
	time.Sleep(60 * time.Millisecond)
	if sess.Slots[2].Status != constants.SlotStatusUnsolved {
		t.Errorf("slot 2 status = %s, want unsolved after delay", sess.Slots[2].Status)
	}
}
