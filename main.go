package main

import "github.com/kestrelhq/normlog/cmd"

func main() {
	cmd.Execute()
}
