//go:build !(js && wasm)
// +build !js !wasm

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "this program runs in the browser: build it with GOOS=js GOARCH=wasm")
	os.Exit(1)
}
