package dtos

// Raw wire shapes returned by the Wikibase-style target-KB API. These are
// translated to MatchRef / PropertyRef / LanguageRef at the provider boundary.

type WbSearchMatch struct {
	Type     string `json:"type"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type WbSearchResult struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Match       WbSearchMatch `json:"match"`
	Score       float64       `json:"score"`
}

type WbSearchEntitiesResponse struct {
	Search []WbSearchResult `json:"search"`
}

type WbConstraintParams struct {
	Pattern string   `json:"pattern,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

type WbConstraint struct {
	Type   string             `json:"type"`
	Rank   string             `json:"rank"`
	Params WbConstraintParams `json:"params"`
}

type WbPropertyResponse struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Datatype    string         `json:"datatype"`
	Constraints []WbConstraint `json:"constraints"`
}

type WbLanguage struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type WbLanguageSearchResponse struct {
	Results []WbLanguage `json:"results"`
}
