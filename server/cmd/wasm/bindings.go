//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"
)

// result converts an operation outcome into the object handed back to JavaScript
func result(key string, value interface{}, err error) js.Value {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{key: value})
}

func stringArgs(args []js.Value, n int) ([]string, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]string, n)
	for i := range out {
		out[i] = args[i].String()
	}
	return out, true
}

func registerFunctions() {
	insufficient := js.ValueOf(map[string]interface{}{"error": "insufficient args"})

	// SealboxEncrypt(mode, keyHex, plaintextHex) -> {data} with data = IV || ciphertext
	js.Global().Set("SealboxEncrypt", js.FuncOf(func(this js.Value, args []js.Value) any {
		a, ok := stringArgs(args, 3)
		if !ok {
			return insufficient
		}
		out, err := encryptHex(a[0], a[1], a[2])
		return result("data", out, err)
	}))

	// SealboxDecrypt(mode, keyHex, messageHex) -> {data}
	js.Global().Set("SealboxDecrypt", js.FuncOf(func(this js.Value, args []js.Value) any {
		a, ok := stringArgs(args, 3)
		if !ok {
			return insufficient
		}
		out, err := decryptHex(a[0], a[1], a[2])
		return result("data", out, err)
	}))

	// SealboxSeal(keyHex, contentHex) -> {sealed}
	js.Global().Set("SealboxSeal", js.FuncOf(func(this js.Value, args []js.Value) any {
		a, ok := stringArgs(args, 2)
		if !ok {
			return insufficient
		}
		out, err := sealHex(a[0], a[1])
		return result("sealed", out, err)
	}))

	// SealboxVerify(keyHex, sealedHex) -> {intact}
	js.Global().Set("SealboxVerify", js.FuncOf(func(this js.Value, args []js.Value) any {
		a, ok := stringArgs(args, 2)
		if !ok {
			return insufficient
		}
		intact, err := verifyHex(a[0], a[1])
		return result("intact", intact, err)
	}))

	// SealboxGenerateKey() -> {key}
	js.Global().Set("SealboxGenerateKey", js.FuncOf(func(this js.Value, args []js.Value) any {
		key, err := generateKeyHex()
		return result("key", key, err)
	}))
}
