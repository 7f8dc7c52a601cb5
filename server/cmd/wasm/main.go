//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"
)

func main() {
	fmt.Println("Sealbox WASM module initialized")

	registerFunctions()

	// Export a ready flag to signal that WASM is ready
	js.Global().Set("WasmReady", js.ValueOf(true))

	// Keep the program running indefinitely
	<-make(chan struct{})
}
