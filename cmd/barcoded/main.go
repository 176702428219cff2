package main

import "github.com/MeKo-Tech/barcoded/cmd/barcoded/cmd"

func main() {
	cmd.Execute()
}
