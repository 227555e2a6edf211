package main

import "github.com/Togather-Foundation/eventos/cmd/server/cmd"

func main() {
	cmd.Execute()
}
