package main

import (
	"os"

	"github.com/ssargent/stakelist/cmd/stakelist/cmd"
)

func main() {
	if err := cmd.Execute(cmd.NewRootCmd()); err != nil {
		os.Exit(1)
	}
}
