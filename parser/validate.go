package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-cricket-live/models"
)

// ValidateSnapshot ensures a snapshot identifies its match.
func ValidateSnapshot(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if strings.TrimSpace(s.MatchID) == "" {
		return fmt.Errorf("snapshot missing match id")
	}
	if !isNumeric(s.MatchID) {
		return fmt.Errorf("snapshot match id %q is not numeric", s.MatchID)
	}
	if strings.TrimSpace(s.ShortName) == "" {
		return fmt.Errorf("snapshot missing short name for %s", s.MatchID)
	}
	return nil
}
