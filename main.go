package main

import (
	"github.com/sessiongate/sessiongate/cmd"
)

func main() {
	cmd.Execute()
}
