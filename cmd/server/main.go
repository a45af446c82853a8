package main

import "github.com/RafexStrike/eventment-server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
