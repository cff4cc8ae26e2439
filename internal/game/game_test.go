package game

import (
	"testing"

	"jeux/internal/protocol"
)

func TestApplyMove_WinDetection(t *testing.T) {
	g := New()
	moves := []Move{
		{Role: protocol.RoleFirst, Square: 1},  // X
		{Role: protocol.RoleSecond, Square: 4}, // O
		{Role: protocol.RoleFirst, Square: 2},  // X
		{Role: protocol.RoleSecond, Square: 5}, // O
		{Role: protocol.RoleFirst, Square: 3},  // X wins top row
	}
	for i, m := range moves {
		if err := g.ApplyMove(m); err != nil {
			t.Fatalf("ApplyMove(%d) returned unexpected error: %v", i, err)
		}
	}
	if !g.Terminated() {
		t.Fatal("game should be terminated after a winning move")
	}
	if w := g.Winner(); w != protocol.RoleFirst {
		t.Fatalf("Winner() = %v, want RoleFirst", w)
	}
}

func TestApplyMove_RejectsOutOfTurn(t *testing.T) {
	g := New()
	if err := g.ApplyMove(Move{Role: protocol.RoleSecond, Square: 1}); err == nil {
		t.Fatal("ApplyMove() out of turn succeeded, want error")
	}
}

func TestApplyMove_RejectsOccupied(t *testing.T) {
	g := New()
	if err := g.ApplyMove(Move{Role: protocol.RoleFirst, Square: 1}); err != nil {
		t.Fatalf("ApplyMove() returned unexpected error: %v", err)
	}
	if err := g.ApplyMove(Move{Role: protocol.RoleSecond, Square: 1}); err == nil {
		t.Fatal("ApplyMove() onto an occupied square succeeded, want error")
	}
}

func TestApplyMove_Draw(t *testing.T) {
	g := New()
	// X O X / X O O / O X X -- no winner, board full.
	seq := []struct {
		role   protocol.Role
		square int
	}{
		{protocol.RoleFirst, 1}, {protocol.RoleSecond, 2}, {protocol.RoleFirst, 3},
		{protocol.RoleSecond, 5}, {protocol.RoleFirst, 4}, {protocol.RoleSecond, 6},
		{protocol.RoleFirst, 8}, {protocol.RoleSecond, 7}, {protocol.RoleFirst, 9},
	}
	for _, m := range seq {
		if err := g.ApplyMove(Move{Role: m.role, Square: m.square}); err != nil {
			t.Fatalf("ApplyMove(%+v) returned unexpected error: %v", m, err)
		}
	}
	if !g.Terminated() {
		t.Fatal("game should be terminated after the board fills")
	}
	if w := g.Winner(); w != protocol.RoleNone {
		t.Fatalf("Winner() = %v, want RoleNone on a draw", w)
	}
}

func TestResign(t *testing.T) {
	g := New()
	if err := g.Resign(protocol.RoleFirst); err != nil {
		t.Fatalf("Resign() returned unexpected error: %v", err)
	}
	if w := g.Winner(); w != protocol.RoleSecond {
		t.Fatalf("Winner() = %v, want RoleSecond after RoleFirst resigns", w)
	}
	if err := g.Resign(protocol.RoleSecond); err == nil {
		t.Fatal("Resign() on an already-terminated game succeeded, want error")
	}
}

func TestParseMove_RoundTrip(t *testing.T) {
	g := New()
	m := Move{Role: protocol.RoleFirst, Square: 5}
	str := UnparseMove(m)

	got, err := g.ParseMove(protocol.RoleFirst, str)
	if err != nil {
		t.Fatalf("ParseMove() returned unexpected error: %v", err)
	}
	if got != m {
		t.Fatalf("ParseMove(UnparseMove(%+v)) = %+v, want the original move", m, got)
	}
}

func TestParseMove_SingleDigitUsesCurrentTurn(t *testing.T) {
	g := New()
	m, err := g.ParseMove(protocol.RoleNone, "5")
	if err != nil {
		t.Fatalf("ParseMove() returned unexpected error: %v", err)
	}
	if m.Role != protocol.RoleFirst || m.Square != 5 {
		t.Fatalf("ParseMove() = %+v, want {RoleFirst 5}", m)
	}
}

func TestParseMove_RoleMismatch(t *testing.T) {
	g := New()
	if _, err := g.ParseMove(protocol.RoleSecond, "5"); err == nil {
		t.Fatal("ParseMove() with wrong role succeeded, want error")
	}
}

func TestRender(t *testing.T) {
	g := New()
	want := " | | \n-----\n | | \n-----\n | | \nIt's X's turn\n"
	if got := g.Render(); got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
	if len(want) != 44 {
		t.Fatalf("test fixture itself is wrong: len = %d, want 44", len(want))
	}
}
