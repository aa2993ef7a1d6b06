package engine

import "fmt"

// Validate checks the semantic invariants of s: 24 points, every point
// holding a single owner, every container holding only its own side's
// pieces, exactly 15 pieces per side, unique piece ids, and dice that are
// consistent with the rolled flag. It returns an error wrapping
// ErrInvalidState.
func Validate(s *GameState) error {
	if _, err := ParseVariant(string(s.Variant)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if s.Turn != White && s.Turn != Black {
		return fmt.Errorf("%w: bad turn %d", ErrInvalidState, s.Turn)
	}
	b := &s.Board
	if len(b.Points) != NumPoints {
		return fmt.Errorf("%w: board has %d points", ErrInvalidState, len(b.Points))
	}

	seen := make(map[string]bool, 2*PiecesPerSide)
	check := func(where string, st Stack, owner Side, single bool) error {
		for _, pc := range st {
			if pc.ID == "" {
				return fmt.Errorf("%w: piece without id at %s", ErrInvalidState, where)
			}
			if seen[pc.ID] {
				return fmt.Errorf("%w: duplicate piece id %q", ErrInvalidState, pc.ID)
			}
			seen[pc.ID] = true
			if pc.Owner != White && pc.Owner != Black {
				return fmt.Errorf("%w: piece %q has no owner", ErrInvalidState, pc.ID)
			}
			if single && pc.Owner != st[0].Owner {
				return fmt.Errorf("%w: point %s holds both sides", ErrInvalidState, where)
			}
			if !single && pc.Owner != owner {
				return fmt.Errorf("%w: %s piece %q in %s", ErrInvalidState, pc.Owner, pc.ID, where)
			}
		}
		return nil
	}

	for p, pt := range b.Points {
		if err := check(fmt.Sprintf("%d", p), pt, 0, true); err != nil {
			return err
		}
	}
	for _, side := range []Side{White, Black} {
		if err := check("bar", b.Bar.Of(side), side, false); err != nil {
			return err
		}
		if err := check("outside", b.Outside.Of(side), side, false); err != nil {
			return err
		}
		if n := b.Count(side); n != PiecesPerSide {
			return fmt.Errorf("%w: %s has %d pieces", ErrInvalidState, side, n)
		}
	}

	return validateDice(&s.Dice)
}

func validateDice(d *Dice) error {
	if !d.Rolled {
		if len(d.Values) != 0 || len(d.Consumed) != 0 {
			return fmt.Errorf("%w: dice values without a roll", ErrInvalidState)
		}
		return nil
	}
	switch len(d.Values) {
	case 2:
	case 4:
		for _, v := range d.Values[1:] {
			if v != d.Values[0] {
				return fmt.Errorf("%w: four dice must be a double", ErrInvalidState)
			}
		}
	default:
		return fmt.Errorf("%w: %d dice rolled", ErrInvalidState, len(d.Values))
	}
	for _, v := range d.Values {
		if v < 1 || v > 6 {
			return fmt.Errorf("%w: die value %d", ErrInvalidState, v)
		}
	}
	used := make(map[int]bool, len(d.Consumed))
	for _, i := range d.Consumed {
		if i < 0 || i >= len(d.Values) || used[i] {
			return fmt.Errorf("%w: bad consumed slot %d", ErrInvalidState, i)
		}
		used[i] = true
	}
	if len(d.Consumed) == len(d.Values) {
		return fmt.Errorf("%w: every die consumed but turn not passed", ErrInvalidState)
	}
	return nil
}
