package main

import "github.com/kozaktomas/immich-tools/cmd"

func main() {
	cmd.Execute()
}
