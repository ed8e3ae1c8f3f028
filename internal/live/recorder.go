package live

import (
	"context"
	"time"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

// Outcome is the persisted summary of a finished run.
type Outcome struct {
	Passkey         string                   `json:"passkey"`
	CompetitionName string                   `json:"competitionName"`
	Round           int                      `json:"round"`
	Champion        spellingbee.Competitor   `json:"champion"`
	Competitors     []spellingbee.Competitor `json:"competitors"`
	FinishedAt      time.Time                `json:"finishedAt"`
}

type Recorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

const recordTimeout = 5 * time.Second

func (s *Session) recordOutcome(st spellingbee.State) {
	if s.recorder == nil || st.Champion == nil {
		return
	}
	o := Outcome{
		Passkey:         st.Passkey,
		CompetitionName: st.CompetitionName,
		Round:           st.CurrentRound,
		Champion:        *st.Champion,
		Competitors:     st.Competitors,
		FinishedAt:      time.Now().UTC(),
	}
	s.logger.Info("competition won", "champion", o.Champion.Name, "round", o.Round)

	// Off the loop: a slow database must not delay ticks.
	ctx := context.WithoutCancel(s.ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, recordTimeout)
		defer cancel()
		if err := s.recorder.RecordOutcome(ctx, o); err != nil {
			s.logger.Error("record outcome", "error", err)
		}
	}()
}
