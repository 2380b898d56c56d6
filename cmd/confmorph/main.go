package main

import (
	"os"

	"github.com/dtillman/confmorph/cmd/confmorph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
