package main

import (
	"fmt"
	"os"

	"github.com/adlstore/adls_sdk_go/cmd/adlsctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
