package main

import "github.com/iksnae/chatlog-viewer/cmd"

func main() {
	cmd.Execute()
}
