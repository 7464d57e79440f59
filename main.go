package main

import "party-photo-backend/cmd"

func main() {
	cmd.Run()
}
