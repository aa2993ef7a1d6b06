// Package main builds the rules engine as a C shared library.
// Build with: go build -buildmode=c-shared -o libbgrules.so ./pkg/capi
//
// Every call that produces a result returns 0 and stores a string the
// caller must release with bgrules_free_string, or returns -1 and leaves
// the message for bgrules_last_error.
package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"sync"
	"unsafe"
)

var (
	lastError  string
	errorMutex sync.Mutex
)

// setError stores an error message for later retrieval.
func setError(err error) {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

// export runs fn and hands its result to C.
func export(result **C.char, fn func() (string, error)) C.int {
	out, err := fn()
	setError(err)
	if err != nil {
		*result = nil
		return -1
	}
	*result = C.CString(out)
	return 0
}

//export bgrules_version
func bgrules_version() *C.char {
	return C.CString(version)
}

//export bgrules_last_error
func bgrules_last_error() *C.char {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if lastError == "" {
		return nil
	}
	return C.CString(lastError)
}

//export bgrules_init
func bgrules_init(seed C.int64_t) C.int {
	initEngine(int64(seed))
	setError(nil)
	return 0
}

//export bgrules_shutdown
func bgrules_shutdown() {
	shutdownEngine()
}

//export bgrules_new_game
func bgrules_new_game(variant *C.char, result **C.char) C.int {
	v := C.GoString(variant)
	return export(result, func() (string, error) { return newGame(v) })
}

//export bgrules_roll
func bgrules_roll(state *C.char, result **C.char) C.int {
	tok := C.GoString(state)
	return export(result, func() (string, error) { return roll(tok) })
}

//export bgrules_legal_moves
func bgrules_legal_moves(state *C.char, result **C.char) C.int {
	tok := C.GoString(state)
	return export(result, func() (string, error) { return legalMoves(tok) })
}

//export bgrules_apply_move
func bgrules_apply_move(state, from, to *C.char, die C.int, pieceID *C.char, result **C.char) C.int {
	tok, f, t := C.GoString(state), C.GoString(from), C.GoString(to)
	var id string
	if pieceID != nil {
		id = C.GoString(pieceID)
	}
	return export(result, func() (string, error) { return applyMove(tok, f, t, int(die), id) })
}

//export bgrules_pass
func bgrules_pass(state *C.char, result **C.char) C.int {
	tok := C.GoString(state)
	return export(result, func() (string, error) { return pass(tok) })
}

//export bgrules_describe
func bgrules_describe(state *C.char, result **C.char) C.int {
	tok := C.GoString(state)
	return export(result, func() (string, error) { return describe(tok) })
}

//export bgrules_free_string
func bgrules_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
