package domain

// CodeSet is an ordered, closed list of selectable codes for one finding field.
type CodeSet []CodeOption

// Contains reports whether code is a member of the set. Matching is exact.
func (s CodeSet) Contains(code string) bool {
	for _, opt := range s {
		if opt.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the bare codes in declaration order.
func (s CodeSet) Codes() []string {
	codes := make([]string, len(s))
	for i, opt := range s {
		codes[i] = opt.Code
	}
	return codes
}

// Describe returns the description attached to code, or "" if unknown.
func (s CodeSet) Describe(code string) string {
	for _, opt := range s {
		if opt.Code == code {
			return opt.Description
		}
	}
	return ""
}

// Shared nodal and metastasis sets.
var (
	binaryNodeCodes = CodeSet{
		{"N0", "No regional lymph node metastasis"},
		{"N1", "Regional lymph node metastasis"},
	}
	binaryMetastasisCodes = CodeSet{
		{"M0", "No distant metastasis"},
		{"M1", "Distant metastasis"},
	}
)

// Ovarian, fallopian tube and primary peritoneal carcinoma.
var (
	OvarianTCodes = CodeSet{
		{"T1a", "Tumor limited to one ovary (capsule intact) or fallopian tube; no tumor on surface; negative washings"},
		{"T1b", "Tumor limited to both ovaries (capsules intact) or fallopian tubes; no tumor on surface; negative washings"},
		{"T1c1", "Tumor limited to one or both ovaries or tubes with surgical spill"},
		{"T1c2", "Capsule ruptured before surgery or tumor on ovarian or tubal surface"},
		{"T1c3", "Malignant cells in ascites or peritoneal washings"},
		{"T2a", "Extension and/or implants on the uterus and/or fallopian tubes and/or ovaries"},
		{"T2b", "Extension to and/or implants on other pelvic tissues"},
		{"T3a", "Microscopic extrapelvic peritoneal involvement with or without positive retroperitoneal nodes"},
		{"T3b", "Macroscopic peritoneal metastasis beyond the pelvis, 2 cm or less"},
		{"T3c", "Macroscopic peritoneal metastasis beyond the pelvis, more than 2 cm"},
	}
	OvarianNCodes = CodeSet{
		{"N0", "No regional lymph node metastasis"},
		{"N1a", "Retroperitoneal lymph node metastasis up to 10 mm"},
		{"N1b", "Retroperitoneal lymph node metastasis more than 10 mm"},
	}
	OvarianMCodes = CodeSet{
		{"M0", "No distant metastasis"},
		{"M1a", "Pleural effusion with positive cytology"},
		{"M1b", "Parenchymal liver or splenic metastases; extra-abdominal metastases including inguinal nodes"},
	}
)

// Cervical carcinoma.
var (
	CervicalTCodes = CodeSet{
		{"TX", "Primary tumor cannot be assessed"},
		{"T0", "No evidence of primary tumor"},
		{"T1a1", "Stromal invasion 3 mm or less in depth"},
		{"T1a2", "Stromal invasion more than 3 mm and not more than 5 mm in depth"},
		{"T1b1", "Invasive carcinoma 2 cm or less in greatest dimension"},
		{"T1b2", "Invasive carcinoma more than 2 cm and not more than 4 cm"},
		{"T1b3", "Invasive carcinoma more than 4 cm"},
		{"T2a1", "Involvement of upper two-thirds of vagina without parametrial invasion, 4 cm or less"},
		{"T2a2", "Involvement of upper two-thirds of vagina without parametrial invasion, more than 4 cm"},
		{"T2b", "Parametrial invasion not extending to the pelvic wall"},
		{"T3a", "Involvement of the lower third of the vagina"},
		{"T3b", "Extension to the pelvic wall and/or hydronephrosis or non-functioning kidney"},
		{"T3c1", "Pelvic lymph node metastasis only"},
		{"T3c2", "Para-aortic lymph node metastasis"},
		{"T4", "Invasion of bladder or rectal mucosa and/or extension beyond the true pelvis"},
	}
	CervicalNCodes = CodeSet{
		{"N0", "No regional lymph node metastasis"},
		{"N0(i+)", "Isolated tumor cells in regional nodes, 0.2 mm or less"},
		{"N1mi", "Pelvic lymph node micrometastasis, more than 0.2 mm and up to 2 mm"},
		{"N1a", "Pelvic lymph node macrometastasis, more than 2 mm"},
		{"N2mi", "Para-aortic lymph node micrometastasis"},
		{"N2a", "Para-aortic lymph node macrometastasis"},
	}
	CervicalMCodes = binaryMetastasisCodes
)

// Uterine sarcoma. Leiomyosarcoma and endometrial stromal sarcoma share one
// primary-tumor enumeration; adenosarcoma grades invasion with an extra T1c tier.
var (
	SarcomaTCodes = CodeSet{
		{"TX", "Primary tumor cannot be assessed"},
		{"T1a", "Tumor limited to the uterus, 5 cm or less"},
		{"T1b", "Tumor limited to the uterus, more than 5 cm"},
		{"T2a", "Tumor involves the adnexa"},
		{"T2b", "Tumor involves other pelvic tissues"},
		{"T3a", "Tumor infiltrates abdominal tissues at one site"},
		{"T3b", "Tumor infiltrates abdominal tissues at more than one site"},
		{"T4", "Tumor invades bladder or rectum"},
	}
	AdenosarcomaTCodes = CodeSet{
		{"TX", "Primary tumor cannot be assessed"},
		{"T1a", "Tumor limited to the endometrium or endocervix without myometrial invasion"},
		{"T1b", "Myometrial invasion of half or less"},
		{"T1c", "Myometrial invasion of more than half"},
		{"T2a", "Tumor involves the adnexa"},
		{"T2b", "Tumor involves other pelvic tissues"},
		{"T3a", "Tumor infiltrates abdominal tissues at one site"},
		{"T3b", "Tumor infiltrates abdominal tissues at more than one site"},
		{"T4", "Tumor invades bladder or rectum"},
	}
	SarcomaNCodes = binaryNodeCodes
	SarcomaMCodes = binaryMetastasisCodes
)

// Vulvar melanoma (cutaneous melanoma criteria). Ulceration and LDH status are
// folded into the code itself.
var (
	MelanomaTCodes = CodeSet{
		{"TX", "Primary tumor thickness cannot be assessed"},
		{"Tis", "Melanoma in situ"},
		{"T1a", "Less than 0.8 mm thick, without ulceration"},
		{"T1b", "Less than 0.8 mm with ulceration, or 0.8 to 1.0 mm"},
		{"T2a", "More than 1.0 to 2.0 mm, without ulceration"},
		{"T2b", "More than 1.0 to 2.0 mm, with ulceration"},
		{"T3a", "More than 2.0 to 4.0 mm, without ulceration"},
		{"T3b", "More than 2.0 to 4.0 mm, with ulceration"},
		{"T4a", "More than 4.0 mm, without ulceration"},
		{"T4b", "More than 4.0 mm, with ulceration"},
	}
	MelanomaNCodes = CodeSet{
		{"N0", "No regional metastases detected"},
		{"N1a", "One clinically occult node"},
		{"N1b", "One clinically detected node"},
		{"N1c", "In-transit, satellite and/or microsatellite metastases without nodal disease"},
		{"N2a", "Two or three clinically occult nodes"},
		{"N2b", "Two or three nodes, at least one clinically detected"},
		{"N2c", "One node with in-transit, satellite and/or microsatellite metastases"},
		{"N3a", "Four or more clinically occult nodes"},
		{"N3b", "Four or more nodes with at least one clinically detected, or matted nodes"},
		{"N3c", "Two or more nodes and/or matted nodes with in-transit, satellite and/or microsatellite metastases"},
	}
	MelanomaMCodes = CodeSet{
		{"M0", "No evidence of distant metastasis"},
		{"M1a", "Distant skin, soft tissue or nonregional node metastasis; LDH not recorded"},
		{"M1a(0)", "Distant skin, soft tissue or nonregional node metastasis; LDH not elevated"},
		{"M1a(1)", "Distant skin, soft tissue or nonregional node metastasis; LDH elevated"},
		{"M1b", "Lung metastasis; LDH not recorded"},
		{"M1b(0)", "Lung metastasis; LDH not elevated"},
		{"M1b(1)", "Lung metastasis; LDH elevated"},
		{"M1c", "Non-CNS visceral metastasis; LDH not recorded"},
		{"M1c(0)", "Non-CNS visceral metastasis; LDH not elevated"},
		{"M1c(1)", "Non-CNS visceral metastasis; LDH elevated"},
		{"M1d", "Central nervous system metastasis; LDH not recorded"},
		{"M1d(0)", "Central nervous system metastasis; LDH not elevated"},
		{"M1d(1)", "Central nervous system metastasis; LDH elevated"},
	}
)

// Vaginal carcinoma. Size thresholds are embedded in the T code.
var (
	VaginalTCodes = CodeSet{
		{"TX", "Primary tumor cannot be assessed"},
		{"T1a", "Confined to the vagina, 2 cm or less"},
		{"T1b", "Confined to the vagina, more than 2 cm"},
		{"T2a", "Invades paravaginal tissues but not the pelvic wall, 2 cm or less"},
		{"T2b", "Invades paravaginal tissues but not the pelvic wall, more than 2 cm"},
		{"T3", "Extends to the pelvic wall and/or lower third of the vagina and/or causes hydronephrosis"},
		{"T4", "Invades bladder or rectal mucosa and/or extends beyond the true pelvis"},
	}
	VaginalNCodes = CodeSet{
		{"N0", "No regional lymph node metastasis"},
		{"N1", "Pelvic or inguinal lymph node metastasis"},
	}
	VaginalMCodes = binaryMetastasisCodes
)

// Gestational trophoblastic neoplasia.
var (
	GTNTCodes = CodeSet{
		{"T1", "Tumor confined to the uterus"},
		{"T2", "Tumor extends to other genital structures (ovary, tube, vagina, broad ligaments)"},
	}
	GTNMCodes = CodeSet{
		{"M0", "No distant metastasis"},
		{"M1a", "Lung metastasis"},
		{"M1b", "All other distant metastasis"},
	}
)

// Vulvar carcinoma.
var (
	VulvarTCodes = CodeSet{
		{"Tis", "Carcinoma in situ"},
		{"T1a", "Lesion 2 cm or less, confined to vulva or perineum, stromal invasion 1.0 mm or less"},
		{"T1b", "Lesion more than 2 cm or stromal invasion more than 1.0 mm, confined to vulva or perineum"},
		{"T2", "Any size with extension to lower third of urethra, lower third of vagina or anus"},
		{"T3", "Any size with extension to upper urethra, upper vagina, bladder or rectal mucosa, or fixed to pelvic bone"},
	}
	VulvarNCodes = CodeSet{
		{"N0", "No regional lymph node metastasis"},
		{"N1a", "One or two lymph node metastases, each less than 5 mm"},
		{"N1b", "One lymph node metastasis, 5 mm or more"},
		{"N2a", "Three or more lymph node metastases, each less than 5 mm"},
		{"N2b", "Two or more lymph node metastases, 5 mm or more"},
		{"N2c", "Lymph node metastasis with extranodal extension"},
		{"N3", "Fixed or ulcerated regional lymph node metastasis"},
	}
	VulvarMCodes = binaryMetastasisCodes
)
