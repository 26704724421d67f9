package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/logger"

	"go.uber.org/zap"
)

// SeedMissions loads authored mission documents from a JSON file into
// the database. A non-empty missions table is left untouched unless
// replace is set, in which case the existing documents are dropped
// first. Returns the number of missions inserted.
func (s *MissionService) SeedMissions(path string, replace bool) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var missions []model.Mission
	if err := json.Unmarshal(raw, &missions); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	existing, err := s.MissionRepo.FindAll()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		if !replace {
			logger.Log.Info("missions already seeded, skipping",
				zap.Int("existing", len(existing)))
			return 0, nil
		}
		for _, m := range existing {
			if err := s.MissionRepo.Delete(m.ID); err != nil {
				return 0, err
			}
		}
	}

	for i := range missions {
		// reject documents whose content or correctSolution shapes
		// would fail at grading time
		if _, err := missions[i].DecodeContent(); err != nil {
			return 0, fmt.Errorf("mission %q has invalid content: %w", missions[i].Title, err)
		}
		if err := s.MissionRepo.Create(&missions[i]); err != nil {
			return 0, err
		}
	}

	logger.Log.Info("missions seeded", zap.Int("count", len(missions)))
	return len(missions), nil
}
