package main

import "github.com/shiftsync/venuepulse/internal/cmd"

func main() {
	cmd.Execute()
}
