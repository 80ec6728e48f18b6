package main

import (
	"os"

	"github.com/siftlab/sift/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
