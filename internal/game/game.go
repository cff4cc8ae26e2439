// Package game implements the Tic-Tac-Toe rules engine: board state, move
// parsing and application, win detection, and the canonical text rendering
// of a board.
package game

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"jeux/internal/core/errs"
	"jeux/internal/protocol"
)

// Mark is the contents of a single board cell.
type Mark uint8

const (
	MarkEmpty Mark = iota
	MarkX
	MarkO
)

func (m Mark) String() string {
	switch m {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return " "
	}
}

func markFor(role protocol.Role) Mark {
	if role == protocol.RoleFirst {
		return MarkX
	}
	return MarkO
}

func roleFor(m Mark) protocol.Role {
	if m == MarkX {
		return protocol.RoleFirst
	}
	return protocol.RoleSecond
}

// Move is a single ply: the role making it and the 1-9 square it targets.
type Move struct {
	Role   protocol.Role
	Square int
}

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Game is a single Tic-Tac-Toe match. The zero value is not usable; use New.
type Game struct {
	mu         sync.Mutex
	board      [9]Mark
	turn       protocol.Role
	numTurns   int
	terminated bool
	winner     protocol.Role
}

// New returns an empty board with FIRST to move.
func New() *Game {
	return &Game{turn: protocol.RoleFirst}
}

// ApplyMove validates and applies m, flipping the turn and detecting a
// winner or a drawn-out board. It returns ErrIllegalMove if the square is
// out of range, occupied, the game has already terminated, or m.Role is not
// the side to move.
func (g *Game) ApplyMove(m Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if m.Square < 1 || m.Square > 9 {
		return errs.ErrIllegalMove
	}
	idx := m.Square - 1
	if g.terminated || g.board[idx] != MarkEmpty || m.Role != g.turn {
		return errs.ErrIllegalMove
	}

	g.board[idx] = markFor(m.Role)
	g.turn = g.turn.Other()
	g.numTurns++

	if w := g.checkWinner(); w != protocol.RoleNone {
		g.winner = w
		g.terminated = true
	} else if g.numTurns >= 9 {
		g.terminated = true
	}
	return nil
}

// checkWinner assumes g.mu is held.
func (g *Game) checkWinner() protocol.Role {
	for _, line := range winLines {
		a, b, c := g.board[line[0]], g.board[line[1]], g.board[line[2]]
		if a != MarkEmpty && a == b && b == c {
			return roleFor(a)
		}
	}
	return protocol.RoleNone
}

// Resign terminates the game with role's side losing. It fails if the game
// has already terminated.
func (g *Game) Resign(role protocol.Role) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.terminated {
		return errs.ErrIllegalMove
	}
	g.terminated = true
	g.winner = role.Other()
	return nil
}

// Terminated reports whether the game has ended, by win, draw, or resignation.
func (g *Game) Terminated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.terminated
}

// Winner returns the winning role, or RoleNone if the game has not
// terminated or ended in a draw.
func (g *Game) Winner() protocol.Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.terminated {
		return protocol.RoleNone
	}
	return g.winner
}

// ParseMove parses str as either "<d>" or "<d><-X"/"<d><-O" ("<d>" being a
// digit 1-9) into a Move. If role is not RoleNone it must match the current
// side to move. The returned Move.Role is always derived from the string
// (the explicit suffix, or the current turn when the string omits one).
func (g *Game) ParseMove(role protocol.Role, str string) (Move, error) {
	g.mu.Lock()
	turn := g.turn
	g.mu.Unlock()

	if role != protocol.RoleNone && role != turn {
		return Move{}, errs.ErrInvalidMove
	}

	var square int
	var moveRole protocol.Role

	switch len(str) {
	case 1:
		d, err := strconv.Atoi(str)
		if err != nil {
			return Move{}, errs.ErrInvalidMove
		}
		square = d
		moveRole = turn
	case 4:
		d, err := strconv.Atoi(str[:1])
		if err != nil {
			return Move{}, errs.ErrInvalidMove
		}
		square = d
		switch str[1:] {
		case "<-X":
			moveRole = protocol.RoleFirst
		case "<-O":
			moveRole = protocol.RoleSecond
		default:
			return Move{}, errs.ErrInvalidMove
		}
	default:
		return Move{}, errs.ErrInvalidMove
	}

	if square < 1 || square > 9 {
		return Move{}, errs.ErrInvalidMove
	}
	return Move{Role: moveRole, Square: square}, nil
}

// UnparseMove renders m in the "<d><-X"/"<d><-O" form accepted by ParseMove.
func UnparseMove(m Move) string {
	return fmt.Sprintf("%d<-%s", m.Square, markFor(m.Role))
}

// Render returns the canonical board-plus-turn text: three rows of cells
// separated by "-----" divider lines, followed by a line naming the side to
// move.
func (g *Game) Render() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("-----\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(g.board[row*3+col].String())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("It's ")
	sb.WriteString(markFor(g.turn).String())
	sb.WriteString("'s turn\n")
	return sb.String()
}
