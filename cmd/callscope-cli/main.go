package main

import "callscope/cmd/callscope-cli/cmd"

func main() {
	cmd.Execute()
}
