package main

import "campuswatch/internal/cli"

func main() {
	cli.Execute()
}
