package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// Rule is one guard→stage entry of a decision list.
type Rule[F any] struct {
	Name  string
	Guard func(F) bool
	Stage string
}

// DecisionList is an ordered cascade. Entries are evaluated top to bottom and
// the first whose guard holds decides the stage; declaration order is the
// precedence.
type DecisionList[F any] []Rule[F]

// First returns the first rule whose guard accepts f.
func (l DecisionList[F]) First(f F) (Rule[F], bool) {
	for _, rule := range l {
		if rule.Guard(f) {
			return rule, true
		}
	}
	return Rule[F]{}, false
}

// Names lists rule names in evaluation order.
func (l DecisionList[F]) Names() []string {
	names := make([]string, len(l))
	for i, rule := range l {
		names[i] = rule.Name
	}
	return names
}

// resolve runs the list and turns the outcome into a result. When nothing
// matches the result carries the sentinel label and notes instead of a stage.
func resolve[F any](l DecisionList[F], f F, protocol domain.Protocol, tnm domain.TNM, sentinel, notes string) *domain.ClassificationResult {
	result := &domain.ClassificationResult{
		Protocol: protocol,
		TNM:      tnm,
	}
	rule, ok := l.First(f)
	if !ok {
		result.FIGOStage = sentinel
		result.Notes = notes
		return result
	}
	result.FIGOStage = rule.Stage
	result.Staged = true
	result.MatchedRule = rule.Name
	return result
}

// Guard helpers over TNM triples.

func tIs(codes ...string) func(domain.TNM) bool {
	return func(tnm domain.TNM) bool { return oneOf(tnm.T, codes) }
}

func nIs(codes ...string) func(domain.TNM) bool {
	return func(tnm domain.TNM) bool { return oneOf(tnm.N, codes) }
}

func mIs(codes ...string) func(domain.TNM) bool {
	return func(tnm domain.TNM) bool { return oneOf(tnm.M, codes) }
}

func all(guards ...func(domain.TNM) bool) func(domain.TNM) bool {
	return func(tnm domain.TNM) bool {
		for _, g := range guards {
			if !g(tnm) {
				return false
			}
		}
		return true
	}
}

func oneOf(code string, codes []string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// tTable expands an ordered T→stage table into decision-list entries.
func tTable(entries [][2]string) DecisionList[domain.TNM] {
	list := make(DecisionList[domain.TNM], 0, len(entries))
	for _, e := range entries {
		list = append(list, Rule[domain.TNM]{
			Name:  "T=" + e[0],
			Guard: tIs(e[0]),
			Stage: e[1],
		})
	}
	return list
}
