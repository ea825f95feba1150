package domain

// Lexicon is the domain vocabulary used by the relevance filter.
// Terms are matched case-insensitively as substrings of pathway text;
// TissueGenes are matched against pathway evidence genes.
type Lexicon struct {
	Repair      []string `json:"repair"`
	Process     []string `json:"process"`
	Tissue      []string `json:"tissue"`
	TissueGenes []string `json:"tissue_genes"`
	OffDomain   []string `json:"off_domain"`
}

// DefaultLexicon returns the built-in cardiac repair vocabulary.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Repair: []string{
			"regenerat", "repair", "wound", "healing", "proliferat", "renewal",
			"dedifferentiat", "reprogramming", "stem cell", "progenitor",
		},
		Process: []string{
			"hippo", "yap", "wnt", "notch", "neuregulin", "erbb", "angiogen",
			"fibrosis", "extracellular matrix", "inflammat", "cell cycle", "apoptosis",
			"hypoxia", "tgf-beta", "igf", "pi3k", "mapk",
		},
		Tissue: []string{
			"cardiac", "heart", "cardiomyocyte", "myocard", "ventric", "atri",
			"epicard", "endocard", "muscle contraction", "sarcomere",
		},
		TissueGenes: []string{
			"TNNT2", "MYH6", "MYH7", "ACTC1", "NKX2-5", "GATA4", "TBX5", "HAND2",
			"MEF2C", "NPPA", "NPPB", "TNNI3", "MYL2", "RYR2", "PLN", "WT1", "TCF21",
		},
		OffDomain: []string{
			"olfactory", "taste", "spermatogen", "oocyte", "keratiniz", "viral",
			"bacterial", "infection", "addiction", "circadian entrainment",
		},
	}
}
