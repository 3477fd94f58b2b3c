// Command quarry is an interactive REPL client for quarryd's line-framed
// TCP protocol (spec §6), grounded on original_source/src/bin/client.rs.
// It uses bufio.Scanner for line input rather than a readline library:
// no such library appears anywhere in the retrieved corpus, and this
// surface has no history/editing requirement beyond what a plain
// line-at-a-time REPL provides.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarrydb/quarry/internal/logging"
)

const responseEnd = "!!!end!!!"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	addr := "127.0.0.1:8080"
	cmd := &cobra.Command{
		Use:   "quarry [addr]",
		Short: "Interactive client for a quarry server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				addr = args[0]
			}
			return runREPL(addr)
		},
	}
	return cmd
}

// client wraps one TCP connection and the session's current transaction
// version, mirroring original_source's Client (Drop rolls back an open
// transaction; here that's an explicit deferred call in runREPL instead).
type client struct {
	conn       net.Conn
	reader     *bufio.Scanner
	txnVersion *uint64
}

func newClient(addr string) (*client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &client{conn: conn, reader: bufio.NewScanner(conn)}, nil
}

func (c *client) execute(sql string) error {
	if _, err := fmt.Fprintln(c.conn, sql); err != nil {
		return err
	}
	for c.reader.Scan() {
		line := c.reader.Text()
		if line == responseEnd {
			return nil
		}
		c.trackTransaction(line)
		fmt.Println(line)
	}
	return c.reader.Err()
}

// trackTransaction mirrors the client prompt logic: a "TRANSACTION <v>
// BEGIN/COMMIT/ROLLBACK" line updates which version, if any, is open.
func (c *client) trackTransaction(line string) {
	if !strings.HasPrefix(line, "TRANSACTION") {
		return
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return
	}
	switch fields[2] {
	case "COMMIT", "ROLLBACK":
		c.txnVersion = nil
	case "BEGIN":
		if v, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
			c.txnVersion = &v
		}
	}
}

func (c *client) prompt() string {
	if c.txnVersion != nil {
		return fmt.Sprintf("quarry#%d> ", *c.txnVersion)
	}
	return "quarry> "
}

func runREPL(addr string) error {
	logger, err := logging.NewClientLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	c, err := newClient(addr)
	if err != nil {
		return err
	}
	defer c.conn.Close()
	defer func() {
		if c.txnVersion != nil {
			_ = c.execute("rollback;")
		}
	}()

	input := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(c.prompt())
		if !input.Scan() {
			return input.Err()
		}
		line := strings.TrimSpace(input.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return nil
		}
		if err := c.execute(line); err != nil {
			return err
		}
	}
}
