package match

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
)

// inputSignature hashes the canonical serialization of a cohort snapshot:
// every submitted participant's (id, role, organization) in ascending id
// order, every preference's id->to_id:rank in ascending from_id then
// to_id order, and the cohort config as JSON with sorted keys. Two runs
// over an unchanged snapshot always produce the same signature.
func inputSignature(participants []*cohortmodels.Participant, preferences []*cohortmodels.Preference, config map[string]any) (string, error) {
	sortedParticipants := append([]*cohortmodels.Participant(nil), participants...)
	sort.Slice(sortedParticipants, func(i, j int) bool {
		return sortedParticipants[i].ID.String() < sortedParticipants[j].ID.String()
	})

	sortedPreferences := append([]*cohortmodels.Preference(nil), preferences...)
	sort.Slice(sortedPreferences, func(i, j int) bool {
		if sortedPreferences[i].FromID != sortedPreferences[j].FromID {
			return sortedPreferences[i].FromID.String() < sortedPreferences[j].FromID.String()
		}
		return sortedPreferences[i].ToID.String() < sortedPreferences[j].ToID.String()
	})

	configJSON, err := marshalSortedKeys(config)
	if err != nil {
		return "", err
	}

	var fields []string
	for _, p := range sortedParticipants {
		fields = append(fields, p.ID.String()+":"+string(p.Role)+":"+p.Organization)
	}
	for _, pref := range sortedPreferences {
		fields = append(fields, pref.FromID.String()+"->"+pref.ToID.String()+":"+strconv.Itoa(pref.Rank))
	}
	fields = append(fields, configJSON)

	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:]), nil
}

func marshalSortedKeys(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, struct {
			Key   string `json:"key"`
			Value any    `json:"value"`
		}{Key: k, Value: m[k]})
	}

	b, err := json.Marshal(ordered)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

