package main

import "github.com/Alijeyrad/mindbook_backend/cmd"

func main() {
	cmd.Execute()
}
