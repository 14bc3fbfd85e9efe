package main

import (
	"os"
)

func main() {
	var sess session
	err := newRootCmd(&sess).Execute()
	if closeErr := sess.close(); closeErr != nil && sess.log != nil {
		sess.log.Error("close database", "err", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
