package models

import "fmt"

// ViewSelection is one of the four chart views offered to the user.
type ViewSelection int

const (
	InterestOverTime ViewSelection = iota
	InterestByRegion
	RelatedTopics
	RelatedQueries
)

// AllViews lists the views in button order.
var AllViews = []ViewSelection{InterestOverTime, InterestByRegion, RelatedTopics, RelatedQueries}

// String returns the button label.
func (v ViewSelection) String() string {
	switch v {
	case InterestOverTime:
		return "Interest over time"
	case InterestByRegion:
		return "Interest by region"
	case RelatedTopics:
		return "Related Topics"
	case RelatedQueries:
		return "Related Queries"
	default:
		return fmt.Sprintf("ViewSelection(%d)", int(v))
	}
}

// Key is the stable identifier used in logs.
func (v ViewSelection) Key() string {
	switch v {
	case InterestOverTime:
		return "interest_over_time"
	case InterestByRegion:
		return "interest_by_region"
	case RelatedTopics:
		return "related_topics"
	case RelatedQueries:
		return "related_queries"
	default:
		return "unknown"
	}
}

func (v ViewSelection) Valid() bool {
	return v >= InterestOverTime && v <= RelatedQueries
}

// ParseViewSelection resolves a key produced by Key.
func ParseViewSelection(key string) (ViewSelection, error) {
	for _, v := range AllViews {
		if v.Key() == key {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", key)
}
