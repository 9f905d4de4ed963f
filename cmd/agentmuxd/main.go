// Command agentmuxd multiplexes an interactive CLI agent behind a PTY to a
// local terminal UI and any number of WebSocket-connected remote clients.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
