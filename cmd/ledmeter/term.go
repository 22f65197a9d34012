package main

import (
	"fmt"
	"os"

	"github.com/karlmutch/errors"
)

var (
	msgV = os.Stdout
	errV = os.Stderr
)

// msgWatch prints errors from the running meter until quitC is closed, the
// meter keeps running after an error so they are reported rather than fatal
func msgWatch(errorC <-chan errors.Error, quitC <-chan struct{}) {
	for {
		select {
		case err := <-errorC:
			if errV != nil && err != nil {
				fmt.Fprintln(errV, err.Error())
			}
		case <-quitC:
			return
		}
	}
}
