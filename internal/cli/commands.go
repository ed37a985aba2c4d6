// Package cli implements the interactive command-line interface. It shows
// live poll results, runs one-off status queries, and manages the target
// list without editing the config file by hand.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/squareland/pinger/internal/config"
	"github.com/squareland/pinger/internal/db"
	"github.com/squareland/pinger/internal/events"
	"github.com/squareland/pinger/internal/monitor"
	"github.com/squareland/pinger/internal/ping"
	"github.com/squareland/pinger/internal/util"
)

// CLI provides an interactive command-line interface.
type CLI struct {
	cfg      *config.Config
	eventBus *events.EventBus
	monitor  *monitor.Monitor
	history  *db.HistoryDatabase // nil when history is disabled
}

// NewCLI creates a new CLI handler. history may be nil.
func NewCLI(cfg *config.Config, eventBus *events.EventBus, mon *monitor.Monitor, history *db.HistoryDatabase) *CLI {
	return &CLI{
		cfg:      cfg,
		eventBus: eventBus,
		monitor:  mon,
		history:  history,
	}
}

// Start begins the interactive CLI loop. It returns when ctx is cancelled
// or stdin is closed.
func (c *CLI) Start(ctx context.Context) {
	fmt.Println("\npinger CLI ready. Type 'help' for available commands.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Print("pinger> ")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			line = strings.TrimSpace(line)
			if line == "" {
				fmt.Print("pinger> ")
				continue
			}

			parts := strings.Fields(line)
			cmd := strings.ToLower(parts[0])
			args := parts[1:]

			if err := c.execute(ctx, cmd, args); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			fmt.Print("pinger> ")
		}
	}
}

// execute processes a single CLI command.
func (c *CLI) execute(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "h", "?":
		c.printHelp()
	case "status", "s":
		c.printStatus(args)
	case "ping", "p":
		return c.cmdPing(args)
	case "targets", "t":
		c.printTargets()
	case "add":
		return c.cmdAdd(args)
	case "remove", "rm":
		return c.cmdRemove(args)
	case "history":
		return c.cmdHistory(args)
	case "system":
		c.printSystem()
	case "quit", "exit", "q":
		fmt.Println("Shutting down...")
		c.eventBus.Emit(ctx, events.Event{
			Type:   events.EventShutdown,
			Source: "cli",
		})
	default:
		fmt.Printf("Unknown command: '%s'. Type 'help' for available commands.\n", cmd)
	}
	return nil
}

// printHelp displays available commands.
func (c *CLI) printHelp() {
	fmt.Println()
	fmt.Println("  status [name]        Show latest poll results")
	fmt.Println("  ping <host:port>     Query a server once, right now")
	fmt.Println("  targets              List configured targets")
	fmt.Println("  add <host:port> [name]  Add a target")
	fmt.Println("  remove <name>        Remove a target")
	fmt.Println("  history <name> [n]   Show recent samples for a target")
	fmt.Println("  system               Show host information")
	fmt.Println("  quit                 Shut down")
	fmt.Println("  help                 Show this help message")
	fmt.Println()
}

// printStatus displays the latest poll results in a table.
func (c *CLI) printStatus(args []string) {
	if len(args) > 0 {
		state, ok := c.monitor.LatestFor(args[0])
		if !ok {
			fmt.Printf("No poll results for target %q\n", args[0])
			return
		}
		c.printTargetDetail(state)
		return
	}

	states := c.monitor.Latest()
	if len(states) == 0 {
		fmt.Println("No poll results yet")
		return
	}

	fmt.Println()
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Target", "Address", "Online", "Players", "MOTD", "RTT", "Checked"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, state := range states {
		online := "DOWN"
		players := "-"
		motd := "-"
		rtt := "-"
		if state.Online {
			online = "UP"
			players = fmt.Sprintf("%d/%d", state.Status.Online.Current, state.Status.Online.Max)
			motd = state.Status.MOTD
			rtt = state.RTT.Round(time.Millisecond).String()
		}

		tw.Append([]string{
			state.Target,
			state.Address,
			online,
			players,
			motd,
			rtt,
			state.CheckedAt.Local().Format("15:04:05"),
		})
	}

	tw.Render()
	fmt.Println()
}

// printTargetDetail prints the full latest state of one target.
func (c *CLI) printTargetDetail(state monitor.TargetState) {
	fmt.Printf("\n  Target:    %s\n", state.Target)
	fmt.Printf("  Address:   %s\n", state.Address)
	fmt.Printf("  Online:    %v\n", state.Online)
	fmt.Printf("  Checked:   %s\n", state.CheckedAt.Local().Format(time.RFC3339))

	if state.Online {
		fmt.Printf("  MOTD:      %s\n", state.Status.MOTD)
		fmt.Printf("  Players:   %d/%d\n", state.Status.Online.Current, state.Status.Online.Max)
		fmt.Printf("  RTT:       %s\n", state.RTT.Round(time.Millisecond))
		if state.Status.Version != nil {
			fmt.Printf("  Version:   %s (protocol %d)\n", state.Status.Version.Server, state.Status.Version.Protocol)
		}
	} else if state.Error != "" {
		fmt.Printf("  Error:     %s\n", state.Error)
	}
	fmt.Println()
}

// cmdPing runs a single on-demand status query.
func (c *CLI) cmdPing(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ping <host:port>")
	}

	address := args[0]
	timeout := time.Duration(c.cfg.Monitor.ConnectTimeoutSec) * time.Second

	start := time.Now()
	status, err := ping.GetStatus(address, timeout)
	rtt := time.Since(start)
	if err != nil {
		return fmt.Errorf("query %s: %w", address, err)
	}

	fmt.Printf("\n  %s is up (%s)\n", address, rtt.Round(time.Millisecond))
	fmt.Printf("  MOTD:     %s\n", status.MOTD)
	fmt.Printf("  Players:  %d/%d\n", status.Online.Current, status.Online.Max)
	if status.Version != nil {
		fmt.Printf("  Version:  %s (protocol %d)\n", status.Version.Server, status.Version.Protocol)
	}
	fmt.Println()
	return nil
}

// printTargets lists the configured targets.
func (c *CLI) printTargets() {
	targets := c.cfg.GetTargets()
	if len(targets) == 0 {
		fmt.Println("No targets configured. Use 'add <host:port>' to add one.")
		return
	}

	fmt.Println()
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Name", "Address"})
	tw.SetBorder(true)

	for _, t := range targets {
		tw.Append([]string{t.Name, t.Address})
	}

	tw.Render()
	fmt.Println()
}

// cmdAdd adds a target and persists the config.
func (c *CLI) cmdAdd(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <host:port> [name]")
	}

	target := config.Target{Address: args[0]}
	if len(args) > 1 {
		target.Name = args[1]
	}

	if err := c.cfg.AddTarget(target); err != nil {
		return err
	}
	if err := c.cfg.Save(); err != nil {
		return err
	}

	fmt.Printf("Added target %s\n", target.Address)
	return nil
}

// cmdRemove removes a target by name or address and persists the config.
func (c *CLI) cmdRemove(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: remove <name>")
	}

	if !c.cfg.RemoveTarget(args[0]) {
		return fmt.Errorf("no target named %q", args[0])
	}
	if err := c.cfg.Save(); err != nil {
		return err
	}

	fmt.Printf("Removed target %s\n", args[0])
	return nil
}

// cmdHistory shows recent samples for a target.
func (c *CLI) cmdHistory(args []string) error {
	if c.history == nil {
		return fmt.Errorf("history is disabled")
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: history <name> [limit]")
	}

	limit := 20
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid limit: %s", args[1])
		}
		limit = parsed
	}

	samples, err := c.history.Recent(args[0], limit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Printf("No samples recorded for target %q\n", args[0])
		return nil
	}

	fmt.Println()
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Time", "Online", "Players", "RTT", "Error"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, s := range samples {
		online := "DOWN"
		players := "-"
		rtt := "-"
		if s.Online {
			online = "UP"
			players = fmt.Sprintf("%d/%d", s.Players, s.MaxPlayers)
			rtt = fmt.Sprintf("%dms", s.RTTMillis)
		}
		tw.Append([]string{
			s.Timestamp.Local().Format("01-02 15:04:05"),
			online,
			players,
			rtt,
			s.Error,
		})
	}

	tw.Render()
	fmt.Println()
	return nil
}

// printSystem shows host information and resource usage.
func (c *CLI) printSystem() {
	info := util.GetSystemInfo()

	fmt.Printf("\n  Hostname:  %s\n", info.Hostname)
	fmt.Printf("  OS:        %s (%s)\n", info.OS, info.Architecture)
	fmt.Printf("  CPU:       %s (%d cores)\n", info.CPUModel, info.CPUCores)
	fmt.Printf("  Memory:    %d MB\n", info.TotalMemory)

	if cpuPercent, err := util.GetCPUUsage(); err == nil {
		fmt.Printf("  CPU Use:   %.1f%%\n", cpuPercent)
	}
	if mem, err := util.GetMemoryUsage(); err == nil {
		fmt.Printf("  Mem Use:   %.1f%%\n", mem.UsedPercent)
	}
	fmt.Println()
}
