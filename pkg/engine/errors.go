package engine

import "errors"

var (
	// ErrIllegalMove is returned when a move is not in the current legal set.
	ErrIllegalMove = errors.New("illegal move")
	// ErrPieceNotFound is returned when the named piece is not in the move's
	// source container.
	ErrPieceNotFound = errors.New("piece not found")
	// ErrAlreadyRolled is returned when rolling while dice are still pending.
	ErrAlreadyRolled = errors.New("dice already rolled")
	// ErrNotRolled is returned when a turn action needs rolled dice.
	ErrNotRolled = errors.New("dice not rolled")
	// ErrInvalidDice is returned for die values outside 1-6.
	ErrInvalidDice = errors.New("dice values must be 1-6")
	// ErrGameOver is returned when acting on a finished game.
	ErrGameOver = errors.New("game is over")
	// ErrInvalidState is returned by Validate.
	ErrInvalidState = errors.New("invalid game state")
	// ErrUnknownVariant is returned by ParseVariant.
	ErrUnknownVariant = errors.New("unknown variant")
)
