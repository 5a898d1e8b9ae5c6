package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive shell for issuing infrastructure requests",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

var consoleCompleter = readline.NewPrefixCompleter(
	readline.PcItem("query"),
	readline.PcItem("find"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

func runConsole(cmd *cobra.Command, args []string) error {
	historyFile := filepath.Join(os.TempDir(), ".ignitionctl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ignitionctl> ",
		HistoryFile:     historyFile,
		AutoComplete:    consoleCompleter,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("start console: %w", err)
	}
	defer rl.Close()

	c := client()
	ctx := cmd.Context()

	fmt.Println("ignitionctl interactive console. Type 'help' for commands, 'exit' to quit.")
	fmt.Println("query/find use an empty deployment location; use the dedicated subcommands for a real one.")
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			printConsoleHelp()
		case "query":
			runConsoleQuery(ctx, c, fields[1:])
		case "find":
			runConsoleFind(ctx, c, fields[1:])
		default:
			fmt.Printf("unknown command %q; type 'help' for usage\n", fields[0])
		}
	}
}

func printConsoleHelp() {
	fmt.Println(`available commands:
  query <infrastructure-id> <request-id>   query a task's status
  find <template> <template-type> <name>   find an existing instance
  help                                     show this message
  exit                                     leave the console`)
}

func runConsoleQuery(ctx context.Context, c *ctlclient.Client, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: query <infrastructure-id> <request-id>")
		return
	}
	resp, err := c.GetInfrastructureTask(ctx, args[0], args[1], map[string]interface{}{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ctlclient.PrintTask(resp)
}

func runConsoleFind(ctx context.Context, c *ctlclient.Client, args []string) {
	if len(args) != 3 {
		fmt.Println("usage: find <template> <template-type> <instance-name>")
		return
	}
	resp, err := c.FindInfrastructure(ctx, args[0], args[1], args[2], map[string]interface{}{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ctlclient.PrintFindResult(resp)
}
