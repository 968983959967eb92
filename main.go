package main

import (
	"os"

	"github.com/scan-io-git/perfscan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
