package main

import (
	"fmt"

	"github.com/zeu5/marl-env/benchmarks"
)

// main entry point to the demo rollouts
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
