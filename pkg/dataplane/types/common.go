package types

import "strings"

// CmdLineGenerator is an interface for generating the dataplane command line
// args for a QoS command object
type CmdLineGenerator interface {
	// GenCmdLineArgs returns the command line arguments which can be
	// incorporated when invoking the dataplane ctrl client
	GenCmdLineArgs() []string
}

// CommandKind is the kind of dataplane QoS command
type CommandKind string

// Command represents a single dataplane QoS command
type Command interface {
	// Kind returns the command kind
	Kind() CommandKind
	// Equals compares this Command with other, returns true if they are equal or false otherwise
	Equals(other Command) bool

	// Driver Specific related Interfaces
	CmdLineGenerator
}

// CommandString renders a Command to the single-line form consumed by the dataplane
func CommandString(c Command) string {
	return strings.Join(c.GenCmdLineArgs(), " ")
}

// CommandStrings renders a list of Commands preserving their order
func CommandStrings(cmds []Command) []string {
	strs := make([]string, 0, len(cmds))
	for _, c := range cmds {
		strs = append(strs, CommandString(c))
	}
	return strs
}

// compare first with second. They are equal if:
//  1. first and second point to the same address (nil or otherwise)
//  2. first and second contain the same value
func compare[C comparable](first *C, second *C) bool {
	if first == second {
		return true
	}

	if first != nil && second != nil {
		return *first == *second
	}

	return false
}
