//go:build js && wasm
// +build js,wasm

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/himanishpuri/SwingScan/internal/report"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/loader"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/search"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorMalformedCSV
	ErrorInvalidProfile
	ErrorSearchFailed
)

// Runs a phase profile over CSV text recorded in the browser.
// Args: csvText, profileYAML (optional; empty runs the default profile).
// Returns: {error: number, data: string} where data is the JSON report.
func detectPhases(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected csvText string as first argument")
	}

	p := profile.Default()
	if len(args) > 1 && args[1].Type() == js.TypeString && strings.TrimSpace(args[1].String()) != "" {
		var err error
		if p, err = profile.Parse(strings.NewReader(args[1].String())); err != nil {
			return makeErrorResponse(ErrorInvalidProfile, err.Error())
		}
	}

	table, err := loader.ReadCSV(context.Background(), strings.NewReader(args[0].String()))
	if err != nil {
		return makeErrorResponse(ErrorMalformedCSV, err.Error())
	}

	results, err := profile.Run(search.NewEngine(table), p)
	if err != nil {
		code := ErrorSearchFailed
		if errors.Is(err, profile.ErrInvalidProfile) {
			code = ErrorInvalidProfile
		}
		return makeErrorResponse(code, err.Error())
	}

	var buf bytes.Buffer
	if err := report.NewWriter(&buf, report.JSON, table).Phases(p, results); err != nil {
		return makeErrorResponse(ErrorSearchFailed, fmt.Sprintf("Failed to render report: %v", err))
	}

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", buf.String())
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	done := make(chan struct{})

	js.Global().Set("detectPhases", js.FuncOf(detectPhases))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined")
	}

	if !console.IsUndefined() {
		console.Call("log", "SwingScan WASM module loaded")
	}

	<-done
}
