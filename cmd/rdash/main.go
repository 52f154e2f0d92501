package main

import (
	"os"

	"github.com/renderdash/rdash/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
