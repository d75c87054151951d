package game

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"vortcheno/internal/constants"
	"vortcheno/internal/util"
)

// Slot is the puzzle state for one chain word. Boundary slots (first and
// last) are permanently solved and never accept input. Interior slots
// carry a fixed-capacity input buffer whose leading cells hold revealed
// hint characters; Cursor never drops below HintsRevealed.
type Slot struct {
	Word          string
	Status        string
	Input         []string
	Cursor        int
	HintsRevealed int
}

// Session owns one in-progress game. All mutation goes through its
// mutex; the clock goroutine and the failure-revert timers are owned by
// the session and stopped on teardown so a superseded session is never
// mutated.
type Session struct {
	mu sync.Mutex

	Slots             []*Slot
	Lives             int
	ElapsedSeconds    int
	TotalGuesses      int
	SelectedWordIndex int
	Complete          bool
	Over              bool
	Stars             int
	Capacity          int

	lastAccess   time.Time
	revertDelay  time.Duration
	clock        *time.Ticker
	clockDone    chan struct{}
	revertTimers map[int]*time.Timer
}

// Options are the session tunables; zero values fall back to defaults.
type Options struct {
	Lives         int
	CapacityFloor int
	RevertDelay   time.Duration
}

// NewSession builds one slot per chain word. Boundary slots come up
// solved and fully populated; interior slots start unsolved with the
// first letter revealed as a permanent hint. The clock is not started
// here; callers start it once the session is registered.
func NewSession(words []string, opts Options) (*Session, error) {
	if len(words) < 3 {
		return nil, errors.New("chain too short: need at least one interior word")
	}

	lives := opts.Lives
	if lives <= 0 {
		lives = constants.StartingLives
	}
	floor := opts.CapacityFloor
	if floor <= 0 {
		floor = constants.MinSlotCapacity
	}
	delay := opts.RevertDelay
	if delay <= 0 {
		delay = constants.FailRevertDelay
	}

	longest := lo.Max(lo.Map(words, func(w string, _ int) int { return len(w) }))
	capacity := max(longest, floor)

	slots := lo.Map(words, func(w string, i int) *Slot {
		s := &Slot{
			Word:   strings.ToUpper(strings.TrimSpace(w)),
			Input:  make([]string, capacity),
			Status: constants.SlotStatusUnsolved,
		}
		if i == 0 || i == len(words)-1 {
			s.Status = constants.SlotStatusSolved
			for j, r := range s.Word {
				s.Input[j] = string(r)
			}
			return s
		}
		s.HintsRevealed = 1
		s.resetToHints()
		return s
	})

	return &Session{
		Slots:             slots,
		Lives:             lives,
		SelectedWordIndex: 1,
		Capacity:          capacity,
		lastAccess:        time.Now(),
		revertDelay:       delay,
		revertTimers:      make(map[int]*time.Timer),
	}, nil
}

// resetToHints rewrites the input buffer to exactly the revealed hint
// prefix and parks the cursor right after it.
func (s *Slot) resetToHints() {
	for i := range s.Input {
		if i < s.HintsRevealed {
			s.Input[i] = string(s.Word[i])
		} else {
			s.Input[i] = ""
		}
	}
	s.Cursor = s.HintsRevealed
}

func (g *Session) interior(i int) bool {
	return i > 0 && i < len(g.Slots)-1
}

func (g *Session) terminal() bool {
	return g.Complete || g.Over
}

// StartClock begins the once-per-second elapsed counter. Safe to call
// once per session; a terminal session never starts ticking.
func (g *Session) StartClock() {
	g.mu.Lock()
	if g.clock != nil || g.terminal() {
		g.mu.Unlock()
		return
	}
	ticker := time.NewTicker(constants.ClockTickPeriod)
	done := make(chan struct{})
	g.clock = ticker
	g.clockDone = done
	g.mu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				g.Tick()
			}
		}
	}()
}

// Tick advances the elapsed counter while the session is live.
func (g *Session) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.terminal() {
		return
	}
	g.ElapsedSeconds++
}

// Teardown cancels the clock and all pending revert timers. Called when
// the session completes, runs out of lives, or is replaced.
func (g *Session) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.teardownLocked()
}

func (g *Session) teardownLocked() {
	if g.clock != nil {
		g.clock.Stop()
		g.clock = nil
	}
	if g.clockDone != nil {
		close(g.clockDone)
		g.clockDone = nil
	}
	for i, t := range g.revertTimers {
		t.Stop()
		delete(g.revertTimers, i)
	}
}

// TypeChar writes one case-normalized character at the cursor of the
// selected slot. No-op on boundary slots, solved slots, full buffers,
// and terminal sessions.
func (g *Session) TypeChar(ch string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAccess = time.Now()

	if g.terminal() || !g.interior(g.SelectedWordIndex) {
		return
	}
	slot := g.Slots[g.SelectedWordIndex]
	if slot.Status == constants.SlotStatusSolved || slot.Cursor >= len(slot.Input) {
		return
	}

	ch = strings.ToUpper(strings.TrimSpace(ch))
	if len(ch) == 0 {
		return
	}
	slot.Input[slot.Cursor] = ch[:1]
	slot.Cursor++
	if slot.Status == constants.SlotStatusUnsolved || slot.Status == constants.SlotStatusFailed {
		slot.Status = constants.SlotStatusSolving
	}
}

// Backspace erases the character before the cursor. Hint cells cannot be
// erased: the cursor never drops below HintsRevealed.
func (g *Session) Backspace() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAccess = time.Now()

	if g.terminal() || !g.interior(g.SelectedWordIndex) {
		return
	}
	slot := g.Slots[g.SelectedWordIndex]
	if slot.Status == constants.SlotStatusSolved || slot.Cursor <= slot.HintsRevealed {
		return
	}
	slot.Cursor--
	slot.Input[slot.Cursor] = ""
}

// Submit checks the slot at index against its solution. Boundary indexes
// are a full no-op. Every other submit counts as a guess, including
// re-submitting an already-solved slot (which changes nothing else).
func (g *Session) Submit(index int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAccess = time.Now()

	if g.terminal() || !g.interior(index) {
		return
	}

	g.TotalGuesses++

	slot := g.Slots[index]
	if slot.Status == constants.SlotStatusSolved {
		return
	}

	guess := strings.TrimSpace(strings.Join(slot.Input, ""))
	if strings.EqualFold(guess, slot.Word) {
		g.solveLocked(index, slot)
		return
	}
	g.failLocked(index, slot)
}

func (g *Session) solveLocked(index int, slot *Slot) {
	slot.Status = constants.SlotStatusSolved
	if t, ok := g.revertTimers[index]; ok {
		t.Stop()
		delete(g.revertTimers, index)
	}

	if lo.EveryBy(g.Slots, func(s *Slot) bool { return s.Status == constants.SlotStatusSolved }) {
		g.Complete = true
		g.Stars = starRating(g.ElapsedSeconds, g.Lives)
		g.teardownLocked()
		util.LogInfo("Chain complete in %ds with %d lives: %d star%s", g.ElapsedSeconds, g.Lives, g.Stars, util.Plural(g.Stars))
		return
	}

	if index < len(g.Slots)-2 {
		g.SelectedWordIndex = g.nextUnsolvedLocked(index)
	}
}

func (g *Session) nextUnsolvedLocked(after int) int {
	for i := after + 1; i < len(g.Slots)-1; i++ {
		if g.Slots[i].Status != constants.SlotStatusSolved {
			return i
		}
	}
	return after
}

func (g *Session) failLocked(index int, slot *Slot) {
	if g.Lives > 0 {
		g.Lives--
	}
	slot.HintsRevealed = min(slot.HintsRevealed+1, len(slot.Word))
	slot.resetToHints()
	slot.Status = constants.SlotStatusFailed

	if g.Lives == 0 {
		g.Over = true
		g.teardownLocked()
		util.LogInfo("Game over after %d guesses", g.TotalGuesses)
		return
	}

	// A re-submit before the delay fires simply reschedules the revert.
	if t, ok := g.revertTimers[index]; ok {
		t.Stop()
	}
	g.revertTimers[index] = time.AfterFunc(g.revertDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.Slots[index].Status == constants.SlotStatusFailed {
			g.Slots[index].Status = constants.SlotStatusUnsolved
		}
		delete(g.revertTimers, index)
	})
}

// IsComplete reports whether every slot is solved.
func (g *Session) IsComplete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Complete
}

// IsOver reports whether the session ran out of lives.
func (g *Session) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Over
}

// StarRating returns the rating frozen at the instant of completion, or
// 0 for a session that has not completed.
func (g *Session) StarRating() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Stars
}

func (g *Session) LastAccess() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastAccess
}

func starRating(elapsedSeconds, lives int) int {
	switch {
	case elapsedSeconds <= 60 && lives >= 4:
		return 3
	case elapsedSeconds <= 120 && lives >= 2:
		return 2
	default:
		return 1
	}
}
