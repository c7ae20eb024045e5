package flyer

import (
	"fmt"
	"strings"
)

// Command is an imperative flyer action dispatched through Set.
type Command int

const (
	// CommandTaxi moves the actuator to the run-up position before the scan
	// start.
	CommandTaxi Command = iota
	// CommandFly arms the capture device, moves the actuator to the finish
	// position, and disarms.
	CommandFly
	// CommandReturn moves the actuator back to the recorded return position.
	CommandReturn
)

// String returns string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandTaxi:
		return "taxi"
	case CommandFly:
		return "fly"
	case CommandReturn:
		return "return"
	default:
		return "unknown"
	}
}

// ParseCommand parses a command token, case-insensitively one of "taxi",
// "fly", or "return". Any other value fails with ErrInvalidCommand.
func ParseCommand(value string) (Command, error) {
	switch strings.ToLower(value) {
	case "taxi":
		return CommandTaxi, nil
	case "fly":
		return CommandFly, nil
	case "return":
		return CommandReturn, nil
	default:
		return 0, fmt.Errorf("%w, received %q", ErrInvalidCommand, value)
	}
}
