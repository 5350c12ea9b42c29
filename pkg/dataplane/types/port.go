package types

import "strconv"

const (
	// CommandKindPort is the kind of the port-level header command
	CommandKindPort CommandKind = "port"
)

// PortCommand is the port-level header command. It declares the shaping
// hierarchy dimensions for one interface and must precede every other
// QoS command for that interface.
type PortCommand struct {
	Ifindex  int
	Subports uint32
	Pipes    uint32
	Profiles uint32
	Overhead uint32
}

// Kind implements Command interface
func (p *PortCommand) Kind() CommandKind {
	return CommandKindPort
}

// Equals implements Command interface
func (p *PortCommand) Equals(other Command) bool {
	otherPort, ok := other.(*PortCommand)
	if !ok {
		return false
	}
	return *p == *otherPort
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (p *PortCommand) GenCmdLineArgs() []string {
	return []string{
		"qos", strconv.Itoa(p.Ifindex),
		"port",
		"subports", strconv.FormatUint(uint64(p.Subports), 10),
		"pipes", strconv.FormatUint(uint64(p.Pipes), 10),
		"profiles", strconv.FormatUint(uint64(p.Profiles), 10),
		"overhead", strconv.FormatUint(uint64(p.Overhead), 10),
	}
}

// Builders

// NewPortCommandBuilder returns a new PortCommandBuilder
func NewPortCommandBuilder() *PortCommandBuilder {
	return &PortCommandBuilder{}
}

// PortCommandBuilder is a PortCommand builder
type PortCommandBuilder struct {
	portCommand PortCommand
}

// WithIfindex adds Ifindex to PortCommandBuilder
func (pb *PortCommandBuilder) WithIfindex(ifindex int) *PortCommandBuilder {
	pb.portCommand.Ifindex = ifindex
	return pb
}

// WithSubports adds the subport count to PortCommandBuilder
func (pb *PortCommandBuilder) WithSubports(subports uint32) *PortCommandBuilder {
	pb.portCommand.Subports = subports
	return pb
}

// WithPipes adds the pipe count to PortCommandBuilder
func (pb *PortCommandBuilder) WithPipes(pipes uint32) *PortCommandBuilder {
	pb.portCommand.Pipes = pipes
	return pb
}

// WithProfiles adds the profile count to PortCommandBuilder
func (pb *PortCommandBuilder) WithProfiles(profiles uint32) *PortCommandBuilder {
	pb.portCommand.Profiles = profiles
	return pb
}

// WithOverhead adds the frame overhead to PortCommandBuilder
func (pb *PortCommandBuilder) WithOverhead(overhead uint32) *PortCommandBuilder {
	pb.portCommand.Overhead = overhead
	return pb
}

// Build builds and returns a new PortCommand instance
func (pb *PortCommandBuilder) Build() *PortCommand {
	return &PortCommand{
		Ifindex:  pb.portCommand.Ifindex,
		Subports: pb.portCommand.Subports,
		Pipes:    pb.portCommand.Pipes,
		Profiles: pb.portCommand.Profiles,
		Overhead: pb.portCommand.Overhead,
	}
}
