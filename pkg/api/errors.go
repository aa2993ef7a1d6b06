package api

import (
	"errors"
	"net/http"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/session"
	"github.com/yourusername/bgrules/pkg/token"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidJSON     = "INVALID_JSON"
	CodeMissingState    = "MISSING_STATE"
	CodeDecodeError     = "DECODE_ERROR"
	CodeParseError      = "PARSE_ERROR"
	CodeInvalidState    = "INVALID_STATE"
	CodeIllegalMove     = "ILLEGAL_MOVE"
	CodePieceNotFound   = "PIECE_NOT_FOUND"
	CodeAlreadyRolled   = "ALREADY_ROLLED"
	CodeNotRolled       = "NOT_ROLLED"
	CodeGameOver        = "GAME_OVER"
	CodeUnknownVariant  = "UNKNOWN_VARIANT"
	CodeNotFound        = "NOT_FOUND"
	CodeSessionExists   = "SESSION_EXISTS"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeServerBusy      = "SERVER_BUSY"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{token.ErrDecode, http.StatusBadRequest, CodeDecodeError},
	{token.ErrParse, http.StatusBadRequest, CodeParseError},
	{engine.ErrInvalidState, http.StatusBadRequest, CodeInvalidState},
	{engine.ErrUnknownVariant, http.StatusBadRequest, CodeUnknownVariant},
	{engine.ErrInvalidDice, http.StatusBadRequest, CodeBadRequest},
	{engine.ErrIllegalMove, http.StatusConflict, CodeIllegalMove},
	{engine.ErrPieceNotFound, http.StatusConflict, CodePieceNotFound},
	{engine.ErrAlreadyRolled, http.StatusConflict, CodeAlreadyRolled},
	{engine.ErrNotRolled, http.StatusConflict, CodeNotRolled},
	{engine.ErrGameOver, http.StatusConflict, CodeGameOver},
	{session.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{session.ErrExists, http.StatusConflict, CodeSessionExists},
	{session.ErrConflict, http.StatusConflict, CodeVersionConflict},
	{errMissingState, http.StatusBadRequest, CodeMissingState},
	{errBadRequest, http.StatusBadRequest, CodeBadRequest},
}

var (
	errMissingState = errors.New("state is required")
	errBadRequest   = errors.New("bad request")
)

// classify maps an error to an HTTP status and error code.
func classify(err error) (int, string) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.status, ec.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}
