package main

import "github.com/wasmhost/wasm/cmd/root"

func main() {
	root.Execute()
}
