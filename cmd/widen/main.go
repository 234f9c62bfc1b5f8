package main

import "github.com/MeKo-Tech/widen/cmd/widen/cmd"

func main() {
	cmd.Execute()
}
