package main

import (
	"context"
	"fmt"
	"os"

	"rras-datagen/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		return 1
	}
	return 0
}
