package main

import "github.com/RyanBlaney/sonido-insight/cmd"

func main() {
	cmd.Execute()
}
