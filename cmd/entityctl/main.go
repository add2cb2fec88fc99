// Command entityctl replays entity collection scenarios.
package main

import "os"

func main() {
	cmd := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
