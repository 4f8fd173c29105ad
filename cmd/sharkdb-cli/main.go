// Sharkdb CLI is an interactive shell for a running sharkdb server.
// It speaks the HTTP API through pkg/client and keeps readline history in
// ~/.sharkdb_history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/BibekPathak/shark-db/pkg/client"
)

const helpText = `commands:
  TABLES                          list tables
  CREATE <table>                  create a table
  DROP <table>                    drop a table
  RENAME <table> <new>            rename a table
  TRUNCATE <table>                remove all entries
  PUT <table> <key> <value>       store a value
  GET <table> <key>               fetch a value
  DEL <table> <key>               delete a key
  EXISTS <table> <key>            check key presence
  SCAN <table> [start] [limit]    ordered scan
  PREFIX <table> <prefix> [limit] prefix scan
  STATS <table>                   table statistics
  COUNT <table>                   entry count
  DUMP <table> [file]             snapshot to file (server data dir)
  LOAD <table> [file]             load from snapshot
  HELP                            this text
  QUIT                            exit`

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8090", "sharkdb server base URL")
	token := flag.String("token", "", "bearer token for write commands")
	flag.Parse()

	c := client.New(*addr)
	c.Token = *token
	ctx := context.Background()
	if err := c.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, ".sharkdb_history")
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Printf("sharkdb shell connected to %s. Type HELP for commands.\n", *addr)
	for {
		input, err := line.Prompt("sharkdb> ")
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if quit := dispatch(ctx, c, input); quit {
			break
		}
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
}

// dispatch runs one command line and reports whether the shell should exit.
func dispatch(ctx context.Context, c *client.Client, input string) bool {
	args := strings.Fields(input)
	cmd := strings.ToUpper(args[0])
	args = args[1:]

	var err error
	switch cmd {
	case "QUIT", "EXIT":
		return true
	case "HELP":
		fmt.Println(helpText)
	case "TABLES":
		err = cmdTables(ctx, c)
	case "CREATE":
		err = withArgs(args, 1, func() error { return c.CreateTable(ctx, args[0]) })
	case "DROP":
		err = withArgs(args, 1, func() error { return c.DropTable(ctx, args[0]) })
	case "RENAME":
		err = withArgs(args, 2, func() error { return c.RenameTable(ctx, args[0], args[1]) })
	case "TRUNCATE":
		err = withArgs(args, 1, func() error { return c.TruncateTable(ctx, args[0]) })
	case "PUT":
		err = withArgs(args, 3, func() error {
			value := strings.Join(args[2:], " ")
			created, perr := c.Put(ctx, args[0], args[1], []byte(value))
			if perr != nil {
				return perr
			}
			if created {
				fmt.Println("created")
			} else {
				fmt.Println("updated")
			}
			return nil
		})
	case "GET":
		err = withArgs(args, 2, func() error {
			v, gerr := c.Get(ctx, args[0], args[1])
			if gerr != nil {
				return gerr
			}
			fmt.Println(string(v))
			return nil
		})
	case "DEL":
		err = withArgs(args, 2, func() error {
			existed, derr := c.Delete(ctx, args[0], args[1])
			if derr != nil {
				return derr
			}
			fmt.Println(existed)
			return nil
		})
	case "EXISTS":
		err = withArgs(args, 2, func() error {
			ok, eerr := c.Exists(ctx, args[0], args[1])
			if eerr != nil {
				return eerr
			}
			fmt.Println(ok)
			return nil
		})
	case "SCAN":
		err = cmdScan(ctx, c, args)
	case "PREFIX":
		err = cmdPrefix(ctx, c, args)
	case "STATS":
		err = withArgs(args, 1, func() error { return cmdStats(ctx, c, args[0]) })
	case "COUNT":
		err = withArgs(args, 1, func() error {
			stats, serr := c.Stats(ctx, args[0])
			if serr != nil {
				return serr
			}
			fmt.Println(stats.Count)
			return nil
		})
	case "DUMP":
		err = withArgs(args, 1, func() error { return c.DumpTable(ctx, args[0], optional(args, 1)) })
	case "LOAD":
		err = withArgs(args, 1, func() error { return c.LoadTable(ctx, args[0], optional(args, 1)) })
	default:
		err = fmt.Errorf("unknown command %q (try HELP)", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return false
}

var errUsage = errors.New("wrong number of arguments (try HELP)")

func withArgs(args []string, min int, fn func() error) error {
	if len(args) < min {
		return errUsage
	}
	return fn()
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func cmdTables(ctx context.Context, c *client.Client) error {
	names, err := c.ListTables(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("(no tables)")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func cmdScan(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	start := optional(args, 1)
	limit, err := optionalInt(args, 2)
	if err != nil {
		return err
	}
	entries, err := c.Scan(ctx, args[0], start, limit)
	if err != nil {
		return err
	}
	printEntries(entries)
	return nil
}

func cmdPrefix(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	limit, err := optionalInt(args, 2)
	if err != nil {
		return err
	}
	entries, err := c.PrefixScan(ctx, args[0], args[1], limit)
	if err != nil {
		return err
	}
	printEntries(entries)
	return nil
}

func cmdStats(ctx context.Context, c *client.Client, table string) error {
	stats, err := c.Stats(ctx, table)
	if err != nil {
		return err
	}
	fmt.Printf("count:         %d\n", stats.Count)
	fmt.Printf("total_bytes:   %d\n", stats.TotalBytes)
	fmt.Printf("height:        %d\n", stats.Height)
	fmt.Printf("min_key:       %s\n", stats.MinKey)
	fmt.Printf("max_key:       %s\n", stats.MaxKey)
	fmt.Printf("last_modified: %s\n", stats.LastModified)
	return nil
}

func optionalInt(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", args[i])
	}
	return n, nil
}

func printEntries(entries []client.Entry) {
	if len(entries) == 0 {
		fmt.Println("(empty)")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s = %s\n", e.Key, string(e.Value))
	}
}
