package main

import "media-trimmer/cmd"

func main() {
	cmd.Execute()
}
