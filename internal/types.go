package internal

type MedalRow struct {
	Rank        int     `json:"rank"`
	CountryName string  `json:"country"`
	NOC         string  `json:"noc"`
	ISO2        *string `json:"iso2"`
	FlagURL     *string `json:"flag_url"`
	Gold        int     `json:"gold"`
	Silver      int     `json:"silver"`
	Bronze      int     `json:"bronze"`
	Total       int     `json:"total"`
	IsEU        bool    `json:"is_eu"`
}

// Tally is the ranking key of a row.
func (r MedalRow) Tally() [4]int {
	return [4]int{r.Gold, r.Silver, r.Bronze, r.Total}
}

// ExtractedRow is one medal-table entry before its identity is resolved.
type ExtractedRow struct {
	Label  string
	NOC    string
	Gold   int
	Silver int
	Bronze int
	Total  int
}

type ReferenceEntry struct {
	NOC         string
	CountryName string
}

type Member struct {
	NOC      string `json:"noc"`
	EUMember bool   `json:"eu_member"`
}

type RunMetadata struct {
	LastETag          *string  `json:"last_etag"`
	LastModified      *string  `json:"last_modified"`
	LastRevisionID    *string  `json:"last_revision_id"`
	LastUpdateUTC     *string  `json:"last_update_utc"`
	SourceURL         string   `json:"source_url"`
	UnmappedCountries []string `json:"unmapped_countries"`
}

type MedalPayload struct {
	LastUpdatedUTC       string     `json:"last_updated_utc"`
	SourceURL            string     `json:"source_url"`
	SourceRevisionID     *string    `json:"source_revision_id"`
	SourceRetrievedAtUTC *string    `json:"source_retrieved_at_utc"`
	Rows                 []MedalRow `json:"rows"`
}

type RunRecord struct {
	ID            int
	TraceID       string
	StartedAt     string
	FinishedAt    string
	RevisionID    *string
	RowCount      int
	UnmappedCount int
}
