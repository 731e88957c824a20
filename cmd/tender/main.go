package main

import (
	"github.com/pycontribs/tender/internal/cmd"
)

func main() {
	cmd.Execute()
}
