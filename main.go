package main

import (
	"os"

	"github.com/abhisek/hemoscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
