package main

import "github.com/criticalinsight/sly/cmd"

func main() {
	cmd.Execute()
}
