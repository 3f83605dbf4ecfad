// Package rules answers chess-rules questions about FEN positions: move
// legality, the position after a move, and SAN/UCI conversion.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/freeeve/repertoire/internal/poskey"
)

// ErrInvalidMove is matched by every MoveError.
var ErrInvalidMove = errors.New("invalid move")

// MoveError reports a move that is not legal in a position.
type MoveError struct {
	FEN  string
	Move string
	Err  error
}

func (e *MoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid move %q in %q: %v", e.Move, e.FEN, e.Err)
	}
	return fmt.Sprintf("invalid move %q in %q", e.Move, e.FEN)
}

func (e *MoveError) Unwrap() error { return e.Err }

func (e *MoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

// Move is a legal move in both notations.
type Move struct {
	SAN string `json:"san"`
	UCI string `json:"uci"`
}

// Engine is the rules collaborator used by the session and the importers.
type Engine interface {
	// Play returns the FEN after san is played from fen.
	Play(fen, san string) (string, error)
	// Legal lists the legal moves of fen.
	Legal(fen string) ([]Move, error)
	// UCI converts san to coordinate notation.
	UCI(fen, san string) (string, error)
	// SAN converts a coordinate move to SAN.
	SAN(fen, uci string) (string, error)
}

// Standard implements Engine for standard chess.
type Standard struct{}

var _ Engine = Standard{}

func load(fen string) (*pgn.GameState, error) {
	if fen == "" || fen == poskey.StartFEN {
		return pgn.NewStartingPosition(), nil
	}
	pos, err := pgn.NewGame(fen)
	if err != nil {
		return nil, fmt.Errorf("load position %q: %w", fen, err)
	}
	return pos, nil
}

func parse(pos *pgn.GameState, fen, san string) (pgn.Mv, error) {
	clean := strings.TrimRight(san, "+#!?")
	mv, err := pgn.ParseSAN(pos, clean)
	if err != nil {
		return mv, &MoveError{FEN: fen, Move: san, Err: err}
	}
	return mv, nil
}

// Play returns the FEN after san is played from fen.
func (Standard) Play(fen, san string) (string, error) {
	pos, err := load(fen)
	if err != nil {
		return "", err
	}
	mv, err := parse(pos, fen, san)
	if err != nil {
		return "", err
	}
	if err := pgn.ApplyMove(pos, mv); err != nil {
		return "", &MoveError{FEN: fen, Move: san, Err: err}
	}
	return pos.ToFEN(), nil
}

// Replay plays sans in order from fen and returns the final FEN.
func Replay(e Engine, fen string, sans ...string) (string, error) {
	for _, san := range sans {
		next, err := e.Play(fen, san)
		if err != nil {
			return "", err
		}
		fen = next
	}
	return fen, nil
}

// Legal lists the legal moves of fen.
func (Standard) Legal(fen string) ([]Move, error) {
	pos, err := load(fen)
	if err != nil {
		return nil, err
	}
	moves := pgn.GenerateLegalMoves(pos)
	out := make([]Move, 0, len(moves))
	for _, mv := range moves {
		out = append(out, Move{SAN: toSAN(pos, mv), UCI: toUCI(mv)})
	}
	return out, nil
}

// UCI converts san to coordinate notation.
func (Standard) UCI(fen, san string) (string, error) {
	pos, err := load(fen)
	if err != nil {
		return "", err
	}
	mv, err := parse(pos, fen, san)
	if err != nil {
		return "", err
	}
	return toUCI(mv), nil
}

// SAN converts a coordinate move to SAN.
func (Standard) SAN(fen, uci string) (string, error) {
	pos, err := load(fen)
	if err != nil {
		return "", err
	}
	for _, mv := range pgn.GenerateLegalMoves(pos) {
		if toUCI(mv) == strings.ToLower(uci) {
			return toSAN(pos, mv), nil
		}
	}
	return "", &MoveError{FEN: fen, Move: uci}
}
