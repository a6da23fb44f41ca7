package service

import (
	"session-service/internal/model"
	"session-service/internal/schedule"
)

// DetectConflict returns the first session in existing that belongs to ownerKey, falls on
// candidateDate and overlaps candidate. Sessions whose interval cannot be derived are skipped.
func DetectConflict(candidate schedule.Interval, candidateDate, ownerKey string, existing []model.Session) *model.Session {
	for i := range existing {
		s := &existing[i]
		if s.OwnerKey() != ownerKey || s.DateKey() != candidateDate {
			continue
		}

		interval, err := s.Interval()
		if err != nil {
			continue
		}

		if candidate.Overlaps(interval) {
			return s
		}
	}

	return nil
}
