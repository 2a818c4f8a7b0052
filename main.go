package main

import "photoshare/cmd"

func main() {
	cmd.Run()
}
