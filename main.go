package main

import (
	"os"

	"github.com/ioburst/iobench/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
