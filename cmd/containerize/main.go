package main

import (
	"github.com/spack/containerize/pkg/cli"
)

func main() {
	cli.Execute()
}
