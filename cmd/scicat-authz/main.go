package main

import (
	"os"

	"github.com/SwissOpenEM/scicat-backend-next/cmd/scicat-authz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
