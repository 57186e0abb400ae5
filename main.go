package main

import "github.com/avidal/oddsarb/cmd"

func main() {
	cmd.Execute()
}
