package scoring

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Stored documents arrive with inconsistent key styles and value types.
// These helpers turn them into strict values and drop whatever cannot be used.

var (
	firstKeys  = []string{"firstPlace", "first_place", "first"}
	secondKeys = []string{"secondPlace", "second_place", "second"}
	thirdKeys  = []string{"thirdPlace", "third_place", "third"}
)

// coerceID converts a loosely typed id into a trimmed string, or "" if unusable
func coerceID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if t != float64(int64(t)) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func lookup(doc map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := doc[k]; ok {
			if id := coerceID(v); id != "" {
				return id
			}
		}
	}
	return ""
}

// PickFromDocument builds a Pick from a key/value document
func PickFromDocument(doc map[string]any) Pick {
	if doc == nil {
		return Pick{}
	}
	return Pick{
		FirstPlace:  lookup(doc, firstKeys),
		SecondPlace: lookup(doc, secondKeys),
		ThirdPlace:  lookup(doc, thirdKeys),
	}
}

// PredictionSetFromDocuments builds a PredictionSet from documents keyed by
// category id. Entries that are not objects or carry no pick are dropped.
func PredictionSetFromDocuments(docs map[string]any) PredictionSet {
	set := make(PredictionSet, len(docs))
	for catID, raw := range docs {
		catID = strings.TrimSpace(catID)
		if catID == "" {
			continue
		}
		doc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p := PickFromDocument(doc)
		if p.IsEmpty() {
			continue
		}
		set[catID] = p
	}
	return set
}

// WinnersFromDocument builds Winners from a category -> nominee document.
// A value may be a bare id or an object with a nomineeId/nominee_id/id field.
func WinnersFromDocument(doc map[string]any) Winners {
	w := make(Winners, len(doc))
	for catID, raw := range doc {
		catID = strings.TrimSpace(catID)
		if catID == "" {
			continue
		}
		var id string
		if obj, ok := raw.(map[string]any); ok {
			id = lookup(obj, []string{"nomineeId", "nominee_id", "winnerId", "winner_id", "id"})
		} else {
			id = coerceID(raw)
		}
		if id != "" {
			w[catID] = id
		}
	}
	return w
}
