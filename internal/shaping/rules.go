package shaping

import (
	"github.com/pkg/errors"
	"strings"
)

// Pattern returns a Rule that gives bonus if the board matches mask exactly, and 0 otherwise.
func Pattern(mask []Cell, bonus float32) Rule {
	return func(board []Cell) float32 {
		if len(board) != len(mask) {
			return 0
		}
		for ii, cell := range board {
			if cell != mask[ii] {
				return 0
			}
		}
		return bonus
	}
}

// OwnPattern returns a Rule that gives bonus if the player's own pieces are exactly at the positions
// marked in mask, regardless of where the opponent's pieces are.
func OwnPattern(mask []bool, bonus float32) Rule {
	return func(board []Cell) float32 {
		if len(board) != len(mask) {
			return 0
		}
		for ii, cell := range board {
			if (cell == Own) != mask[ii] {
				return 0
			}
		}
		return bonus
	}
}

// ParseOwnMask parses a mask string like "010/101/000": '1' marks an own piece, '0' a position
// without one, and '/' or whitespace are ignored.
func ParseOwnMask(s string) ([]bool, error) {
	var mask []bool
	for _, r := range s {
		switch r {
		case '0':
			mask = append(mask, false)
		case '1':
			mask = append(mask, true)
		case '/', ' ', '\t', '\n':
		default:
			return nil, errors.Errorf("invalid character %q in mask %q", r, s)
		}
	}
	return mask, nil
}

// LikeableMask is the tic-tac-toe pattern rewarded by LikeablePattern:
//
//	. o .
//	o . o
//	. . .
const LikeableMask = "010/101/000"

// LikeableBonus is the reward given by LikeablePattern.
const LikeableBonus = 1000

// LikeablePattern rewards a player whose pieces form exactly the LikeableMask.
var LikeablePattern = OwnPattern(mustParseOwnMask(LikeableMask), LikeableBonus)

func mustParseOwnMask(s string) []bool {
	mask, err := ParseOwnMask(s)
	if err != nil {
		panic(err)
	}
	return mask
}

// RulesByName maps rule names accepted in configuration strings to rules.
var RulesByName = map[string]Rule{
	"likeable": LikeablePattern,
}

// ParseRules parses a list of rule names separated by "+", e.g. "likeable".
func ParseRules(names string) ([]Rule, error) {
	if names == "" {
		return nil, nil
	}
	var rules []Rule
	for _, name := range strings.Split(names, "+") {
		rule, found := RulesByName[name]
		if !found {
			return nil, errors.Errorf("unknown shaping rule %q", name)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
