package session

import (
	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/transpose"
	"github.com/freeeve/repertoire/internal/tree"
)

// Play plays san on the board. A move the repertoire already holds in this
// position, through any of its transposed occurrences, is followed; any
// other legal move is added to the repertoire.
func (s *Session) Play(san string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return State{}, ErrNoRepertoire
	}

	fen := s.fen()
	uci, err := s.cfg.Rules.UCI(fen, san)
	if err != nil {
		return State{}, err
	}
	if err := s.playUCI(uci); err != nil {
		return State{}, err
	}
	return s.afterMove(), nil
}

// PlayUCI is Play for a coordinate move such as "g1f3".
func (s *Session) PlayUCI(uci string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return State{}, ErrNoRepertoire
	}
	if err := s.playUCI(uci); err != nil {
		return State{}, err
	}
	return s.afterMove(), nil
}

// PlayMainVariant plays the main repertoire move of the current position,
// or its first move when none is flagged.
func (s *Session) PlayMainVariant() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return State{}, ErrNoRepertoire
	}

	var next *tree.Node
	s.tracker.Read(func(_ *tree.Node, snap *transpose.Snapshot) {
		for _, c := range snap.ResolveNode(s.last()) {
			if next == nil || (c.MainVariant && !next.MainVariant) {
				next = c
			}
		}
	})
	if next == nil {
		return State{}, ErrNoContinuation
	}
	if err := s.follow(next); err != nil {
		return State{}, err
	}
	return s.afterMove(), nil
}

// TakeBack undoes the last move. With deleteLatest the move is also removed
// from the repertoire together with its continuations.
func (s *Session) TakeBack(deleteLatest bool) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return State{}, ErrNoRepertoire
	}
	if len(s.moves) < 2 {
		return State{}, ErrAtStart
	}

	n := s.last()
	s.moves = s.moves[:len(s.moves)-1]
	s.fens = s.fens[:len(s.fens)-1]

	if deleteLatest {
		err := s.tracker.Mutate(func(*tree.Node) error {
			if p := n.Parent(); p != nil && !p.RemoveChild(n) {
				return tree.ErrNotChild
			}
			return nil
		})
		if err != nil {
			return State{}, err
		}
		s.log.Info().Str("move", n.Path()).Msg("move deleted")
	}
	s.followAnalysis()
	return s.state(), nil
}

func (s *Session) afterMove() State {
	s.reply()
	s.followAnalysis()
	return s.state()
}

func (s *Session) playUCI(uci string) error {
	fen := s.fen()
	san, err := s.cfg.Rules.SAN(fen, uci)
	if err != nil {
		return err
	}
	next, err := s.cfg.Rules.Play(fen, san)
	if err != nil {
		return err
	}

	ply := nextPly(fen, len(s.moves))
	notation := tree.FormatNotation(ply, san)
	last := s.last()

	var match *tree.Node
	s.tracker.Read(func(_ *tree.Node, snap *transpose.Snapshot) {
		match = findMove(snap, last, notation, poskey.FromFEN(next))
	})
	if match == nil {
		match = tree.NewMove(ply, san, next)
		s.addMove(last, match)
	}
	s.moves = append(s.moves, match)
	s.fens = append(s.fens, next)
	return nil
}

// findMove returns the repertoire node for notation played from last: a
// resolved continuation of last, else any node reaching key with the same
// notation.
func findMove(snap *transpose.Snapshot, last *tree.Node, notation string, key poskey.Key) *tree.Node {
	for _, c := range snap.ResolveNode(last) {
		if c.Notation == notation {
			return c
		}
	}
	for _, n := range snap.Lookup(key) {
		if n.Notation == notation {
			return n
		}
	}
	return nil
}

// addMove attaches n below the first occurrence of last's position that is
// not itself marked as a transposition. The new move is main only when it is
// the first continuation of its parent.
func (s *Session) addMove(last, n *tree.Node) {
	parent := last
	for _, occ := range s.tracker.Snapshot().Occurrences(last) {
		if !occ.HasTransposition() {
			parent = occ
			break
		}
	}
	s.tracker.Mutate(func(*tree.Node) error {
		n.MainVariant = len(parent.Children()) == 0
		parent.AddChild(n)
		return nil
	})
	s.log.Debug().Str("move", n.Path()).Bool("main", n.MainVariant).Msg("move added")
}

// follow plays a repertoire node from the current position.
func (s *Session) follow(n *tree.Node) error {
	next, err := s.cfg.Rules.Play(s.fen(), n.SAN())
	if err != nil {
		s.log.Error().Err(err).Str("move", n.Path()).Msg("repertoire move rejected")
		return err
	}
	s.moves = append(s.moves, n)
	s.fens = append(s.fens, next)
	return nil
}

// reply answers with a random acceptable repertoire move when random mode is
// on and the player's color is to move.
func (s *Session) reply() {
	if !s.random || s.sideToMove() != s.color {
		return
	}
	var options []*tree.Node
	s.tracker.Read(func(_ *tree.Node, snap *transpose.Snapshot) {
		for _, c := range snap.ResolveNode(s.last()) {
			if c.IsAcceptable() {
				options = append(options, c)
			}
		}
	})
	if len(options) == 0 {
		return
	}
	pick := options[s.cfg.Intn(len(options))]
	if err := s.follow(pick); err == nil {
		s.log.Debug().Str("move", pick.Notation).Int("options", len(options)).Msg("random reply")
	}
}

func (s *Session) sideToMove() tree.Color {
	if c := poskey.FromFEN(s.fen()).SideToMove(); c != 0 {
		return tree.Color(c)
	}
	return tree.White
}
