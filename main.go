package main

import "github.com/iksnae/chat2md/cmd"

func main() {
	cmd.Execute()
}
