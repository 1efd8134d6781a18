// Package main is the entry point for the TripNest API.
// Commands and dependency wiring live in internal/cli.
package main

import "github.com/tripnest/backend/internal/cli"

func main() {
	cli.Execute()
}
