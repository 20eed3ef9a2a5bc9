package main

import "chip8emu/cmd"

func main() {
	cmd.Execute()
}
