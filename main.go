package main

import "github.com/pipesh/pipesh/cmd"

func main() {
	cmd.Execute()
}
