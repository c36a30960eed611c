//go:build wasm

package main

// serve is never reached in the browser: RunWhenOnBrowser blocks.
func serve() {}
