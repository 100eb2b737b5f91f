package api

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"minutes/internal/services"
	"minutes/internal/store"
	"minutes/internal/textutil"
)

// minRelatedScore drops matches that share only incidental words.
const minRelatedScore = 0.1

// Related ranks other stored meetings by how much their participants,
// topics and action items overlap with meeting id. Scores are TF-IDF cosine
// similarities over the whole history.
func (s *MeetingService) Related(ctx context.Context, id int64, limit int) ([]RelatedMeeting, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageHistory, "related", "", err)
	}

	var target *store.Meeting
	fingerprints := make(map[int64]*textutil.Fingerprint, len(rows))
	corpus := textutil.NewCorpus()
	for _, row := range rows {
		fp := textutil.NewFingerprint(meetingText(row))
		fingerprints[row.ID] = fp
		corpus.Add(fp)
		if row.ID == id {
			target = row
		}
	}
	if target == nil {
		return nil, services.Wrap(services.ErrNotFound, stageHistory, "related", fmt.Sprintf("meeting %d", id), userFacing(msgMeetingMissing))
	}

	idf := corpus.IDF()
	base := fingerprints[id].WithIDF(idf)
	var out []RelatedMeeting
	for _, row := range rows {
		if row.ID == id {
			continue
		}
		score := textutil.CosineSimilarity(base, fingerprints[row.ID].WithIDF(idf))
		if score < minRelatedScore {
			continue
		}
		out = append(out, RelatedMeeting{Meeting: FromStoreMeeting(row), Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func meetingText(m *store.Meeting) string {
	parts := make([]string, 0, 1+len(m.Record.Participants)+len(m.Record.Topics)+len(m.Record.ActionItems))
	parts = append(parts, m.Title)
	parts = append(parts, m.Record.Participants...)
	parts = append(parts, m.Record.Topics...)
	for _, item := range m.Record.ActionItems {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, "\n")
}
