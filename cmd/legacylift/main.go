package main

import "github.com/yash23jamak/LegacyLift-B/internal/cli"

func main() {
	cli.Execute()
}
