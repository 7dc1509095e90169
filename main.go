package main

import "github.com/arvrtise/haus/cmd"

func main() {
	cmd.Execute()
}
