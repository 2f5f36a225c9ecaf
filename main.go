package main

import (
	_ "time/tzdata"

	"github.com/dt-pm-tools/lh2gh/cmd"
)

func main() {
	cmd.Execute()
}
