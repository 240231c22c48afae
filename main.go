package main

import "github.com/o1x3/o1x3/cmd"

func main() {
	cmd.Execute()
}
