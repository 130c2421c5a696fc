package domain

// Histology is the endometrial histology risk class.
type Histology string

const (
	HistologyNonAggressive Histology = "non_aggressive"
	HistologyAggressive    Histology = "aggressive"
)

// MyometrialInvasion is the depth of myometrial invasion.
type MyometrialInvasion string

const (
	InvasionNone         MyometrialInvasion = "none"
	InvasionLessThanHalf MyometrialInvasion = "lt_50"
	InvasionHalfOrMore   MyometrialInvasion = "ge_50"
)

// LVSI is the extent of lymphovascular space invasion.
type LVSI string

const (
	LVSINone      LVSI = "none"
	LVSIFocal     LVSI = "focal"
	LVSIExtensive LVSI = "extensive"
)

// NodeMetastasisSize is the size class of the largest nodal metastasis.
type NodeMetastasisSize string

const (
	NodeMetastasisNone  NodeMetastasisSize = "none"
	NodeMetastasisMicro NodeMetastasisSize = "micro"
	NodeMetastasisMacro NodeMetastasisSize = "macro"
)

// Enumerations for the endometrial categorical fields.
var (
	HistologyOptions = CodeSet{
		{string(HistologyNonAggressive), "Non-aggressive (low-grade endometrioid)"},
		{string(HistologyAggressive), "Aggressive (high-grade endometrioid, serous, clear cell, carcinosarcoma, undifferentiated, mixed)"},
	}
	MyometrialInvasionOptions = CodeSet{
		{string(InvasionNone), "No myometrial invasion"},
		{string(InvasionLessThanHalf), "Invasion of less than half of the myometrium"},
		{string(InvasionHalfOrMore), "Invasion of half or more of the myometrium"},
	}
	LVSIOptions = CodeSet{
		{string(LVSINone), "No LVSI"},
		{string(LVSIFocal), "Focal LVSI"},
		{string(LVSIExtensive), "Substantial (extensive) LVSI"},
	}
	NodeMetastasisSizeOptions = CodeSet{
		{string(NodeMetastasisNone), "No nodal metastasis"},
		{string(NodeMetastasisMicro), "Micrometastasis (0.2 to 2 mm)"},
		{string(NodeMetastasisMacro), "Macrometastasis (more than 2 mm)"},
	}
)

// EndometrialFindings is the pathology finding set for endometrial carcinoma.
type EndometrialFindings struct {
	Histology          Histology          `json:"histology" yaml:"histology"`
	MyometrialInvasion MyometrialInvasion `json:"myometrial_invasion" yaml:"myometrial_invasion"`
	LVSI               LVSI               `json:"lvsi" yaml:"lvsi"`
	NodeMetastasisSize NodeMetastasisSize `json:"node_metastasis_size" yaml:"node_metastasis_size"`

	CervicalStromalInvasion  bool `json:"cervical_stromal_invasion" yaml:"cervical_stromal_invasion"`
	SerosalInvasion          bool `json:"serosal_invasion" yaml:"serosal_invasion"`
	AdnexalInvolvement       bool `json:"adnexal_involvement" yaml:"adnexal_involvement"`
	AdnexalBilateral         bool `json:"adnexal_bilateral" yaml:"adnexal_bilateral"`
	AdnexalCapsuleRuptured   bool `json:"adnexal_capsule_ruptured" yaml:"adnexal_capsule_ruptured"`
	VaginalInvolvement       bool `json:"vaginal_involvement" yaml:"vaginal_involvement"`
	ParametrialInvolvement   bool `json:"parametrial_involvement" yaml:"parametrial_involvement"`
	PelvicPeritoneal         bool `json:"pelvic_peritoneal_involvement" yaml:"pelvic_peritoneal_involvement"`
	BladderMucosaInvasion    bool `json:"bladder_mucosa_invasion" yaml:"bladder_mucosa_invasion"`
	IntestinalMucosaInvasion bool `json:"intestinal_mucosa_invasion" yaml:"intestinal_mucosa_invasion"`
	PelvicNodes              bool `json:"pelvic_nodes" yaml:"pelvic_nodes"`
	ParaAorticNodes          bool `json:"para_aortic_nodes" yaml:"para_aortic_nodes"`
	UpperAbdominalPeritoneal bool `json:"upper_abdominal_peritoneal" yaml:"upper_abdominal_peritoneal"`
	DistantMetastasis        bool `json:"distant_metastasis" yaml:"distant_metastasis"`

	POLEMutant  bool `json:"pole_mutant" yaml:"pole_mutant"`
	P53Abnormal bool `json:"p53_abnormal" yaml:"p53_abnormal"`
}

func (f *EndometrialFindings) Protocol() Protocol { return ProtocolEndometrial }

// Validate checks the four categorical fields; boolean flags are always valid.
// Node size is not cross-checked against the node flags: size only refines a
// flagged site, and unflagged sites are negative.
func (f *EndometrialFindings) Validate() error {
	checks := []struct {
		field string
		value string
		set   CodeSet
	}{
		{"histology", string(f.Histology), HistologyOptions},
		{"myometrial_invasion", string(f.MyometrialInvasion), MyometrialInvasionOptions},
		{"lvsi", string(f.LVSI), LVSIOptions},
		{"node_metastasis_size", string(f.NodeMetastasisSize), NodeMetastasisSizeOptions},
	}
	for _, c := range checks {
		if err := validateCode(ProtocolEndometrial, c.field, c.value, c.set); err != nil {
			return err
		}
	}
	return nil
}

// EndometrialFlagFields names the boolean findings in form order.
var EndometrialFlagFields = []string{
	"cervical_stromal_invasion",
	"serosal_invasion",
	"adnexal_involvement",
	"adnexal_bilateral",
	"adnexal_capsule_ruptured",
	"vaginal_involvement",
	"parametrial_involvement",
	"pelvic_peritoneal_involvement",
	"bladder_mucosa_invasion",
	"intestinal_mucosa_invasion",
	"pelvic_nodes",
	"para_aortic_nodes",
	"upper_abdominal_peritoneal",
	"distant_metastasis",
	"pole_mutant",
	"p53_abnormal",
}
