package pipeline

import (
	"errors"
	"os"
	"strings"

	"github.com/titanous/json5"

	"medals/internal"
)

type memberFile struct {
	Members []internal.Member `json:"members"`
}

// LoadMembers returns the NOCs flagged eu_member in the member-set file.
// A missing file is an empty set.
func LoadMembers(path string) ([]string, error) {
	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var file memberFile
	if err := json5.Unmarshal(blob, &file); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(file.Members))
	for _, m := range file.Members {
		noc := strings.TrimSpace(m.NOC)
		if m.EUMember && noc != "" {
			out = append(out, noc)
		}
	}
	return out, nil
}
