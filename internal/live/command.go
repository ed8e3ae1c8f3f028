package live

import (
	"fmt"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

type CommandType string

const (
	CmdRegister       CommandType = "Register"
	CmdSelectSpeller  CommandType = "SelectSpeller"
	CmdStartTurn      CommandType = "StartTurn"
	CmdCheckSpelling  CommandType = "CheckSpelling"
	CmdRefresh        CommandType = "Refresh"
	CmdEndSpelling    CommandType = "EndSpelling"
	CmdConfirmWinners CommandType = "ConfirmWinners"
	CmdPreviousRound  CommandType = "PreviousRound"
	CmdNextRound      CommandType = "NextRound"
	CmdSetTimer       CommandType = "SetTimer"
	CmdReset          CommandType = "Reset"
)

// Command is one organizer action against a running competition.
type Command struct {
	Type         CommandType `json:"type"`
	Names        []string    `json:"names,omitempty"`
	CompetitorID string      `json:"competitorId,omitempty"`
	WinnerIDs    []string    `json:"winnerIds,omitempty"`
	WordNumber   int         `json:"wordNumber,omitempty"`
	Spelling     string      `json:"spelling,omitempty"`
	Seconds      int         `json:"seconds,omitempty"`
}

func apply(e *spellingbee.Engine, cmd Command) error {
	switch cmd.Type {
	case CmdRegister:
		return e.Register(cmd.Names)
	case CmdSelectSpeller:
		return e.SelectSpeller(cmd.CompetitorID)
	case CmdStartTurn:
		_, err := e.StartTurn(cmd.CompetitorID)
		return err
	case CmdCheckSpelling:
		_, err := e.Check(cmd.WordNumber, cmd.Spelling)
		return err
	case CmdRefresh:
		return e.Refresh()
	case CmdEndSpelling:
		return e.EndSpelling()
	case CmdConfirmWinners:
		return e.ConfirmWinners(cmd.WinnerIDs)
	case CmdPreviousRound:
		return e.PreviousRound()
	case CmdNextRound:
		return e.NextRound()
	case CmdSetTimer:
		return e.SetTimerDuration(cmd.Seconds)
	case CmdReset:
		e.Reset()
		return nil
	default:
		return fmt.Errorf("%w: unsupported command %q", spellingbee.ErrValidation, cmd.Type)
	}
}
