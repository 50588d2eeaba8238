package main

import "shared-house-backend/cmd"

func main() {
	cmd.Run()
}
