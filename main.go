package main

import "marquee/cmd"

func main() {
	cmd.Execute()
}
