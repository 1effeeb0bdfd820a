package main

import (
	"os"

	"github.com/dshills/gitguard/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
