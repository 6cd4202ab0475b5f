package main

import "github.com/francois202/gigabanksystem1-sub000/cmd/consumer/cmd"

func main() {
	cmd.Execute()
}
