package main

import "github.com/MeKo-Tech/pointmap/internal/cmd"

func main() {
	cmd.Execute()
}
