package game

import (
	"github.com/samber/lo"

	"vortcheno/internal/constants"
)

// SlotView is one slot as sent to the client. The solution word is only
// included once the slot is solved or the session has ended; live slots
// expose their length and revealed cells only.
type SlotView struct {
	Word          string   `json:"word,omitempty"`
	Length        int      `json:"length"`
	Status        string   `json:"status"`
	Cells         []string `json:"cells"`
	HintsRevealed int      `json:"hintsRevealed"`
	Boundary      bool     `json:"boundary"`
}

type View struct {
	Slots             []SlotView `json:"slots"`
	Lives             int        `json:"lives"`
	ElapsedSeconds    int        `json:"elapsedSeconds"`
	TotalGuesses      int        `json:"totalGuesses"`
	SelectedWordIndex int        `json:"selectedWordIndex"`
	Complete          bool       `json:"complete"`
	Over              bool       `json:"over"`
	Stars             int        `json:"stars,omitempty"`
	Capacity          int        `json:"capacity"`
}

// Snapshot renders the session for the client.
func (g *Session) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	slots := lo.Map(g.Slots, func(s *Slot, i int) SlotView {
		v := SlotView{
			Length:        len(s.Word),
			Status:        s.Status,
			Cells:         append([]string(nil), s.Input...),
			HintsRevealed: s.HintsRevealed,
			Boundary:      i == 0 || i == len(g.Slots)-1,
		}
		if s.Status == constants.SlotStatusSolved || g.Over {
			v.Word = s.Word
		}
		return v
	})

	return View{
		Slots:             slots,
		Lives:             g.Lives,
		ElapsedSeconds:    g.ElapsedSeconds,
		TotalGuesses:      g.TotalGuesses,
		SelectedWordIndex: g.SelectedWordIndex,
		Complete:          g.Complete,
		Over:              g.Over,
		Stars:             g.Stars,
		Capacity:          g.Capacity,
	}
}
