package main

import (
	"teamhub/cmd"
)

func main() {
	cmd.Execute()
}
