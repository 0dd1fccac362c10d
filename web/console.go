//go:build js
// +build js

package web

import "github.com/gopherjs/gopherjs/js"

// Console writes log records to the browser console. Key/value pairs are
// passed through so the console can render them as objects.
type Console struct{}

func (Console) Debug(msg string, args ...any) {
	log("log", msg, args)
}

func (Console) Warn(msg string, args ...any) {
	log("warn", msg, args)
}

func (Console) Error(msg string, args ...any) {
	log("error", msg, args)
}

func log(method, msg string, args []any) {
	js.Global.Get("console").Call(method, append([]any{msg}, args...)...)
}
