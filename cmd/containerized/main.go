package main

import (
	"log"

	"github.com/spack/containerize/pkg/api"
)

func main() {
	if err := api.Serve(); err != nil {
		log.Fatal(err)
	}
}
