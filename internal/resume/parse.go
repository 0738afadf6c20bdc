package resume

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// ParseCandidates turns uploaded candidate data into applications. The
// content may be a JSON array, a JSON object wrapping an array (under
// any key), a single JSON object, or JSON-lines. Field names are
// normalized from the loose upload schema (gmail, role,
// "domain experience", "current salary") into the internal one. Items
// that are not objects are skipped.
func ParseCandidates(content string) []Application {
	raw := decodeCandidateItems(content)

	candidates := make([]Application, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		candidates = append(candidates, normalizeCandidate(obj))
	}
	return candidates
}

func decodeCandidateItems(content string) []any {
	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		// Not whole-file JSON; fall back to one JSON object per line.
		var items []any
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var item any
			if err := json.Unmarshal([]byte(line), &item); err == nil {
				items = append(items, item)
			}
		}
		return items
	}

	switch v := decoded.(type) {
	case []any:
		return v
	case map[string]any:
		// The payload may wrap the list under a key like "users" or
		// "candidates". Keys are scanned in sorted order so the choice
		// is deterministic.
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
		return []any{v}
	default:
		return nil
	}
}

func normalizeCandidate(item map[string]any) Application {
	id := stringField(item, "id")
	if id == "" {
		id = fmt.Sprintf("UPLOAD-%d", rand.Intn(9000)+1000)
	}
	name := stringField(item, "name")
	if name == "" {
		name = "Unknown Candidate"
	}
	email := firstString(item, "email", "gmail")
	if email == "" {
		email = "no-email@example.com"
	}

	verified := true
	if v, ok := item["verified"].(bool); ok {
		verified = v
	}

	domain := firstString(item, "domain", "role")
	if domain == "" {
		domain = "unknown"
	}
	domain = strings.ReplaceAll(strings.ToLower(domain), " ", "_")

	return Application{
		ID:              id,
		Name:            name,
		Email:           email,
		Verified:        verified,
		ExperienceYears: firstFloat(item, "experience_years", "domain experience"),
		Domain:          domain,
		CurrentSalary:   firstFloat(item, "current_salary", "current salary"),
		ExpectedSalary:  firstFloat(item, "expected_salary", "expected salary"),
		CGPA:            firstFloat(item, "cgpa"),
	}
}

func stringField(item map[string]any, key string) string {
	if s, ok := item[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(item, key); s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(item map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := item[key].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f != 0 {
				return f
			}
		}
	}
	return 0
}
