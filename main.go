package main

import "github.com/rahmatfauzi/modular-backend/cmd"

func main() {
	cmd.Execute()
}
