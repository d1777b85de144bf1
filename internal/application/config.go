package application

// ElectionConfig is the configuration document for one election and the
// primary input of the Loader. It is accepted as JSON or YAML; unknown
// fields are rejected in both encodings.
type ElectionConfig struct {
	// Seed is the base random seed. When omitted the Runner derives one from
	// the clock and reports it in the Result.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	// Issues declares every issue and its legal stances.
	Issues []IssueConfig `yaml:"issues" json:"issues" validate:"required,min=1,dive"`
	// Candidates lists the candidates in ballot order. The order decides
	// ties both in individual votes and in the final ranking.
	Candidates []CandidateConfig `yaml:"candidates" json:"candidates" validate:"required,min=1,dive"`
	// Populations lists the voter cohorts to generate.
	Populations []PopulationConfig `yaml:"populations" json:"populations" validate:"required,min=1,dive"`
}

// IssueConfig declares one issue. Stance order is significant: it breaks
// ties when the majority stance is computed.
type IssueConfig struct {
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Stances []string `yaml:"stances" json:"stances" validate:"required,min=1,unique,dive,required"`
}

// CandidateConfig declares a candidate and its stance on every issue.
type CandidateConfig struct {
	Name  string                `yaml:"name" json:"name" validate:"required"`
	Views []CandidateViewConfig `yaml:"views" json:"views" validate:"required,dive"`
}

// CandidateViewConfig is a candidate's stance on one issue.
type CandidateViewConfig struct {
	Issue  string `yaml:"issue" json:"issue" validate:"required"`
	Stance string `yaml:"stance" json:"stance" validate:"required"`
}

// PopulationConfig declares a cohort of voters.
type PopulationConfig struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	// Size is a pointer so that an explicit zero is distinguishable from
	// a missing field.
	Size       *int              `yaml:"size" json:"size" validate:"required,min=0"`
	IssueViews []IssueViewConfig `yaml:"issue_views" json:"issue_views" validate:"required,dive"`
}

// IssueViewConfig describes how a population feels about one issue.
type IssueViewConfig struct {
	// Name is the issue name.
	Name string `yaml:"name" json:"name" validate:"required"`
	// Weight is the mean importance members attach to the issue.
	Weight *float64 `yaml:"weight" json:"weight" validate:"required,finite"`
	// WeightVariance is the spread of the importance weight. Despite the
	// key it is used as a standard deviation.
	WeightVariance *float64 `yaml:"weight_variance" json:"weight_variance" validate:"required,finite,min=0"`
	// Stances maps each declared stance to the share of members holding
	// it. The shares must sum to 1.
	Stances map[string]float64 `yaml:"stances" json:"stances" validate:"required,min=1,dive,finite,min=0"`
}
