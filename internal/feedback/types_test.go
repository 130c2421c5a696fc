package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

func TestRecord_Validate(t *testing.T) {
	valid := func() *Record {
		return &Record{
			Protocol:       domain.ProtocolOvarian,
			FindingsDigest: "abc",
			SuggestedStage: "Stage IA",
			ClinicianStage: "Stage IA",
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Record)
		ok     bool
	}{
		{"valid", func(r *Record) {}, true},
		{"unknown protocol", func(r *Record) { r.Protocol = "breast" }, false},
		{"missing digest", func(r *Record) { r.FindingsDigest = "" }, false},
		{"missing suggested stage", func(r *Record) { r.SuggestedStage = "" }, false},
		{"missing clinician stage", func(r *Record) { r.ClinicianStage = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			}
		})
	}

	var nilRecord *Record
	assert.ErrorIs(t, nilRecord.Validate(), ErrInvalidRecord)
}

func TestDigest(t *testing.T) {
	a := &domain.OvarianFindings{T: "T1a", N: "N0", M: "M0"}
	b := &domain.OvarianFindings{T: "T1a", N: "N0", M: "M0"}
	c := &domain.OvarianFindings{T: "T1b", N: "N0", M: "M0"}
	// Same codes under another protocol must not collide.
	d := &domain.CervicalFindings{T: "T1a", N: "N0", M: "M0"}

	da, err := Digest(a)
	require.NoError(t, err)
	db, _ := Digest(b)
	dc, _ := Digest(c)
	dd, _ := Digest(d)

	assert.Len(t, da, 64)
	assert.Equal(t, da, db)
	assert.NotEqual(t, da, dc)
	assert.NotEqual(t, da, dd)

	_, err = Digest(nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDigest_GTNLabelsMatchCodes(t *testing.T) {
	byCode := &domain.GTNFindings{T: "T1", M: "M0", GTNRiskInput: domain.GTNRiskInput{
		Age: "ge40", AntecedentPregnancy: "mole", IntervalMonths: "7to12", PretreatmentHCG: "ge1e5",
		TumorSize: "3to5cm", MetastasisSite: "lung", MetastasisCount: "1to4", PriorChemotherapy: "single_drug",
	}}
	byLabel := &domain.GTNFindings{T: "T1", M: "M0", GTNRiskInput: domain.GTNRiskInput{
		Age: " 1(≥40歲) ", AntecedentPregnancy: "0(葡萄胎)", IntervalMonths: "2(7-12個月)", PretreatmentHCG: "4(≥10⁵)",
		TumorSize: "1(3-5公分)", MetastasisSite: "0(肺)", MetastasisCount: "1(1-4個)", PriorChemotherapy: "2(單一藥物)",
	}}

	dc, err := Digest(byCode)
	require.NoError(t, err)
	dl, err := Digest(byLabel)
	require.NoError(t, err)
	assert.Equal(t, dc, dl)
	assert.Equal(t, " 1(≥40歲) ", byLabel.Age, "digest must not mutate the caller's findings")
}

func TestNewRecord(t *testing.T) {
	findings := &domain.OvarianFindings{T: "T1a", N: "N0", M: "M0"}
	result := &domain.ClassificationResult{
		Protocol:  domain.ProtocolOvarian,
		TNM:       domain.TNM{T: "T1a", N: "N0", M: "M0"},
		FIGOStage: "Stage IA",
		Staged:    true,
	}

	t.Run("accepted suggestion", func(t *testing.T) {
		rec, err := NewRecord(findings, result, "", "")
		require.NoError(t, err)
		assert.Equal(t, domain.ProtocolOvarian, rec.Protocol)
		assert.Equal(t, "T1a N0 M0", rec.TNM)
		assert.Equal(t, "Stage IA", rec.ClinicianStage)
		assert.True(t, rec.Agreed)
		assert.NoError(t, rec.Validate())
	})

	t.Run("overridden stage", func(t *testing.T) {
		rec, err := NewRecord(findings, result, " Stage IB ", "frozen section reviewed")
		require.NoError(t, err)
		assert.Equal(t, "Stage IB", rec.ClinicianStage)
		assert.False(t, rec.Agreed)
		assert.Equal(t, "frozen section reviewed", rec.Notes)
	})

	t.Run("sentinel result keeps its note as the suggestion", func(t *testing.T) {
		sentinel := &domain.ClassificationResult{Protocol: domain.ProtocolOvarian, Notes: "cannot classify"}
		rec, err := NewRecord(findings, sentinel, "Stage IIIA1", "")
		require.NoError(t, err)
		assert.Equal(t, "cannot classify", rec.SuggestedStage)
		assert.False(t, rec.Agreed)
	})

	t.Run("nil result", func(t *testing.T) {
		_, err := NewRecord(findings, nil, "", "")
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}
