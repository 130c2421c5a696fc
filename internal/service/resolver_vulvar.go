package service

import (
	"fmt"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// CodePattern matches one TNM position: either a literal code or the Any
// wildcard.
type CodePattern struct {
	code     string
	wildcard bool
}

// Any matches every code.
var Any = CodePattern{wildcard: true}

// Code returns a pattern matching exactly code.
func Code(code string) CodePattern {
	return CodePattern{code: code}
}

// Matches reports whether code satisfies the pattern.
func (p CodePattern) Matches(code string) bool {
	return p.wildcard || p.code == code
}

// IsWildcard reports whether the pattern is Any.
func (p CodePattern) IsWildcard() bool {
	return p.wildcard
}

func (p CodePattern) String() string {
	if p.wildcard {
		return "Any"
	}
	return p.code
}

// StagePattern is one row of the vulvar table.
type StagePattern struct {
	T, N, M CodePattern
	Stage   string
}

// Name identifies the row, e.g. "(T3,Any,M0)".
func (p StagePattern) Name() string {
	return fmt.Sprintf("(%s,%s,%s)", p.T, p.N, p.M)
}

// Matches reports whether every position of the pattern accepts tnm.
func (p StagePattern) Matches(tnm domain.TNM) bool {
	return p.T.Matches(tnm.T) && p.N.Matches(tnm.N) && p.M.Matches(tnm.M)
}

// VulvarPatterns is the FIGO 2021 vulvar table. Literal rows precede the
// wildcard rows so a catch-all never masks a specific combination.
var VulvarPatterns = buildVulvarPatterns()

func buildVulvarPatterns() []StagePattern {
	rows := []StagePattern{
		{Code("Tis"), Code("N0"), Code("M0"), "Stage 0"},
		{Code("T1a"), Code("N0"), Code("M0"), "Stage IA"},
		{Code("T1b"), Code("N0"), Code("M0"), "Stage IB"},
		{Code("T2"), Code("N0"), Code("M0"), "Stage II"},
	}
	nodal := []struct {
		n     []string
		stage string
	}{
		{[]string{"N1a", "N1b"}, "Stage IIIA"},
		{[]string{"N2a", "N2b"}, "Stage IIIB"},
		{[]string{"N2c"}, "Stage IIIC"},
		{[]string{"N3"}, "Stage IVA"},
	}
	for _, group := range nodal {
		for _, t := range []string{"T1a", "T1b", "T2"} {
			for _, n := range group.n {
				rows = append(rows, StagePattern{Code(t), Code(n), Code("M0"), group.stage})
			}
		}
	}
	return append(rows,
		StagePattern{Code("T3"), Any, Code("M0"), "Stage IVA"},
		StagePattern{Any, Any, Code("M1"), "Stage IVB"},
	)
}

// vulvarCascade wraps the pattern table as a decision list so it shares the
// evaluation path of the other protocols.
var vulvarCascade = func() DecisionList[domain.TNM] {
	list := make(DecisionList[domain.TNM], 0, len(VulvarPatterns))
	for _, p := range VulvarPatterns {
		list = append(list, Rule[domain.TNM]{Name: p.Name(), Guard: p.Matches, Stage: p.Stage})
	}
	return list
}()

// ResolveVulvar stages vulvar carcinoma by first-match scan of VulvarPatterns.
func ResolveVulvar(f *domain.VulvarFindings) *domain.ClassificationResult {
	tnm := domain.TNM{T: f.T, N: f.N, M: f.M}
	return resolve(vulvarCascade, tnm, domain.ProtocolVulvar, tnm,
		"cannot classify", "TNM combination is not in the FIGO table")
}
