// Package interactive provides the interactive console of gfs-ctl.
package interactive

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/gfs-power/gfs-go/pkg/regulator"
)

// Backend is what the console drives.
type Backend interface {
	Status(w io.Writer)
	Clocks(w io.Writer)
	Journal(w io.Writer)
	Enable(rail string) error
	Disable(rail string) error
	Sweep() ([]string, error)
	Fault(args []string) error
	RailNames() []string
}

// Console handles interactive mode for gfs-ctl.
type Console struct {
	backend Backend
	rl      *readline.Instance
}

// New creates a console reading from the terminal.
func New(backend Backend) (*Console, error) {
	rails := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range backend.RailNames() {
		rails = append(rails, readline.PcItem(name))
	}
	completer := readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("status"),
		readline.PcItem("clocks"),
		readline.PcItem("journal"),
		readline.PcItem("enable", rails...),
		readline.PcItem("disable", rails...),
		readline.PcItem("sweep"),
		readline.PcItem("fault",
			readline.PcItem("halt"),
			readline.PcItem("unhalt"),
			readline.PcItem("prepare"),
			readline.PcItem("rate"),
			readline.PcItem("clear"),
		),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gfs> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{backend: backend, rl: rl}, nil
}

// Run starts the command loop. It returns on "exit" or EOF.
func (c *Console) Run() {
	defer c.rl.Close()

	out := c.rl.Stdout()
	printHelp(out)

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			return
		}
		if !Execute(c.backend, line, out) {
			return
		}
	}
}

// Execute runs one console line against backend. It returns false when the
// console should exit.
func Execute(b Backend, line string, out io.Writer) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		printHelp(out)

	case "status", "s":
		b.Status(out)

	case "clocks", "c":
		b.Clocks(out)

	case "journal", "j":
		b.Journal(out)

	case "enable", "e", "disable", "d":
		if len(args) != 1 {
			fmt.Fprintf(out, "usage: %s <rail>\n", cmd)
			return true
		}
		var err error
		if cmd[0] == 'e' {
			err = b.Enable(args[0])
		} else {
			err = b.Disable(args[0])
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v (status %d)\n", err, regulator.Status(err))
			return true
		}
		fmt.Fprintln(out, "ok")

	case "sweep":
		names, err := b.Sweep()
		if len(names) > 0 {
			fmt.Fprintf(out, "disabled: %s\n", strings.Join(names, " "))
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

	case "fault", "f":
		if err := b.Fault(args); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return true
		}
		fmt.Fprintln(out, "ok")

	case "exit", "quit", "q":
		return false

	default:
		fmt.Fprintf(out, "unknown command %q, try help\n", cmd)
	}
	return true
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Commands:
  status, s                  Show every rail
  clocks, c                  Show simulated clocks
  journal, j                 Show hardware operations of the last command
  enable, e <rail>           Claim and enable a rail
  disable, d <rail>          Disable a rail
  sweep                      Disable every unclaimed rail (once)
  fault halt|unhalt <port>   Fail the next bus port operations
  fault prepare|rate <rail> <clock>
                             Fail clock prepare or set-rate
  fault clear                Remove all injected faults
  exit, q                    Leave the console
`)
}
