// cmd/hashbench/main.go
package main

import (
	cmd "github.com/mwiater/hashbench/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main starts the hashbench CLI application by delegating to the
// cobra root command defined in the commands package.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
