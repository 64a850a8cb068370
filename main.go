package main

import (
	"os"

	"volunvibe/app/cli"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the command line and exits with its status.
func RealMain() {
	exit(cli.NewRunner().Run(os.Args[1:]))
}
