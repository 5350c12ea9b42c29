package types

import "strconv"

const (
	// CommandKindPipe is the kind of the per-pipe profile binding command
	CommandKindPipe CommandKind = "pipe"
)

// PipeCommand binds one pipe of a subport to a shaping profile. Profile is
// the interface-scoped profile index, not a profile name.
type PipeCommand struct {
	Ifindex int
	Subport uint32
	Pipe    uint32
	Profile uint32
}

// Kind implements Command interface
func (p *PipeCommand) Kind() CommandKind {
	return CommandKindPipe
}

// Equals implements Command interface
func (p *PipeCommand) Equals(other Command) bool {
	otherPipe, ok := other.(*PipeCommand)
	if !ok {
		return false
	}
	return *p == *otherPipe
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (p *PipeCommand) GenCmdLineArgs() []string {
	return []string{
		"qos", strconv.Itoa(p.Ifindex),
		"pipe",
		strconv.FormatUint(uint64(p.Subport), 10),
		strconv.FormatUint(uint64(p.Pipe), 10),
		strconv.FormatUint(uint64(p.Profile), 10),
	}
}

// Builders

// NewPipeCommandBuilder returns a new PipeCommandBuilder
func NewPipeCommandBuilder() *PipeCommandBuilder {
	return &PipeCommandBuilder{}
}

// PipeCommandBuilder is a PipeCommand builder
type PipeCommandBuilder struct {
	pipeCommand PipeCommand
}

// WithIfindex adds Ifindex to PipeCommandBuilder
func (pb *PipeCommandBuilder) WithIfindex(ifindex int) *PipeCommandBuilder {
	pb.pipeCommand.Ifindex = ifindex
	return pb
}

// WithSubport adds the subport id to PipeCommandBuilder
func (pb *PipeCommandBuilder) WithSubport(subport uint32) *PipeCommandBuilder {
	pb.pipeCommand.Subport = subport
	return pb
}

// WithPipe adds the pipe id to PipeCommandBuilder
func (pb *PipeCommandBuilder) WithPipe(pipe uint32) *PipeCommandBuilder {
	pb.pipeCommand.Pipe = pipe
	return pb
}

// WithProfile adds the profile index to PipeCommandBuilder
func (pb *PipeCommandBuilder) WithProfile(profile uint32) *PipeCommandBuilder {
	pb.pipeCommand.Profile = profile
	return pb
}

// Build builds and returns a new PipeCommand instance
func (pb *PipeCommandBuilder) Build() *PipeCommand {
	return &PipeCommand{
		Ifindex: pb.pipeCommand.Ifindex,
		Subport: pb.pipeCommand.Subport,
		Pipe:    pb.pipeCommand.Pipe,
		Profile: pb.pipeCommand.Profile,
	}
}
