package types

import "strconv"

const (
	// CommandKindEnable is the kind of the enable command
	CommandKindEnable CommandKind = "enable"
)

// EnableCommand activates the shaping hierarchy previously configured on an
// interface. It must be the last command in an interface's sequence.
type EnableCommand struct {
	Ifindex int
}

// Kind implements Command interface
func (e *EnableCommand) Kind() CommandKind {
	return CommandKindEnable
}

// Equals implements Command interface
func (e *EnableCommand) Equals(other Command) bool {
	otherEnable, ok := other.(*EnableCommand)
	if !ok {
		return false
	}
	return *e == *otherEnable
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (e *EnableCommand) GenCmdLineArgs() []string {
	return []string{"qos", strconv.Itoa(e.Ifindex), "enable"}
}

// NewEnableCommand creates a new EnableCommand for ifindex
func NewEnableCommand(ifindex int) *EnableCommand {
	return &EnableCommand{Ifindex: ifindex}
}
