// Package table is the glue between chat-style text commands and the
// blackjack engine.
package table

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackbot/internal/blackjack"
)

// Command is a recognised chat command.
type Command int

const (
	CommandNone Command = iota
	CommandStart
	CommandHit
	CommandStand
	CommandSplit
	CommandStatus
	CommandHelp
)

// String returns the command as typed in chat
func (c Command) String() string {
	switch c {
	case CommandStart:
		return "!blackjack"
	case CommandHit:
		return "!hit"
	case CommandStand:
		return "!stand"
	case CommandSplit:
		return "!split"
	case CommandStatus:
		return "!bjstatus"
	case CommandHelp:
		return "!bjhelp"
	default:
		return ""
	}
}

// ParseCommand matches a whole chat line, ignoring case and surrounding space.
func ParseCommand(text string) Command {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "!blackjack":
		return CommandStart
	case "!hit":
		return CommandHit
	case "!stand":
		return CommandStand
	case "!split":
		return CommandSplit
	case "!bjstatus":
		return CommandStatus
	case "!bjhelp", "!help":
		return CommandHelp
	default:
		return CommandNone
	}
}

// HelpLines lists the commands for the help reply.
func HelpLines() []string {
	return []string{
		"!blackjack - start a new round",
		"!hit       - take a card",
		"!stand     - stop on this hand",
		"!split     - split a pair",
		"!bjstatus  - show whose turn it is and the time left",
		"!bjhelp    - show this help",
	}
}

// Reply is what a handled command returns directly to the caller. Game
// progress is reported through the engine's notifier instead.
type Reply struct {
	Command Command
	Status  *blackjack.Status
	Help    []string
}

// Dispatcher runs chat commands against an engine on a Loop.
type Dispatcher struct {
	engine *blackjack.Engine
	loop   *Loop
	logger *log.Logger
}

// NewDispatcher creates a dispatcher. All engine access must go through loop.
func NewDispatcher(engine *blackjack.Engine, loop *Loop, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		loop:   loop,
		logger: logger.WithPrefix("dispatch"),
	}
}

// Handle parses text from player at tableID and applies it. Lines that are
// not commands return a Reply with CommandNone and no error.
func (d *Dispatcher) Handle(ctx context.Context, tableID, player, text string) (Reply, error) {
	cmd := ParseCommand(text)
	reply := Reply{Command: cmd}
	if cmd == CommandNone {
		return reply, nil
	}
	if cmd == CommandHelp {
		reply.Help = HelpLines()
		return reply, nil
	}

	var err error
	runErr := d.loop.Do(ctx, func() {
		switch cmd {
		case CommandStart:
			_, err = d.engine.Start(player, tableID)
		case CommandHit:
			_, err = d.engine.Hit(tableID, player)
		case CommandStand:
			_, err = d.engine.Stand(tableID, player)
		case CommandSplit:
			_, err = d.engine.Split(tableID, player)
		case CommandStatus:
			st := d.engine.Status(tableID)
			reply.Status = &st
		}
	})
	if runErr != nil {
		return reply, runErr
	}
	if err != nil {
		d.logger.Debug("Command rejected", "table", tableID, "player", player, "command", cmd, "error", err)
	}
	return reply, err
}
