// Package main is the entry point for the inventory tool.
package main

import (
	"inventory-tool/cmd/inventory/cmd"
)

func main() {
	cmd.Execute()
}
