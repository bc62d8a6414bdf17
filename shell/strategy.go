package shell

import "fmt"

// Strategy is the verbosity policy a command runs under.
type Strategy uint8

const (
	// Quiet captures the command's output without echoing it.
	Quiet Strategy = iota
	// Verbose captures the command's output and streams it live.
	Verbose
)

func (s Strategy) String() string {
	switch s {
	case Quiet:
		return "quiet"
	case Verbose:
		return "verbose"
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// Escalate returns the strategy to use after a failure with hidden output.
// Escalation only ever moves towards Verbose.
func (s Strategy) Escalate() Strategy {
	return Verbose
}

// ParseStrategy parses "quiet" or "verbose".
func ParseStrategy(value string) (Strategy, error) {
	switch value {
	case "", "quiet":
		return Quiet, nil
	case "verbose":
		return Verbose, nil
	}
	return Quiet, fmt.Errorf("invalid strategy %q: expected quiet or verbose", value)
}
