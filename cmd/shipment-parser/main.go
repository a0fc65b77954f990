package main

import (
	"os"

	"shipment-parser/cmd/shipment-parser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
