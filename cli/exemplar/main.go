package main

import (
	"os"

	exemplarcmder "github.com/draftloop/exemplar/cmd/exemplar"
)

func main() {
	cmd := exemplarcmder.NewExemplarCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
