// Package reshape turns provider tables into the shape each chart view plots.
// Every function is pure: the input table is never modified.
package reshape

import (
	"fmt"

	"trends-viewer/internal/models"
)

// TopRegions is how many regions the interest-by-region chart keeps.
const TopRegions = 5

// relatedTopicsDropped are the columns that carry no plottable information.
var relatedTopicsDropped = []string{"formattedValue", "link", "topic_mid", "topic_type"}

// InterestOverTime plots the time-indexed table as-is.
func InterestOverTime(t *models.Table) (*models.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("interest over time: no data")
	}
	return t.Clone(), nil
}

// InterestByRegion keeps the TopRegions rows with the highest value for topic,
// largest first. Fewer rows are returned whole.
func InterestByRegion(t *models.Table, topic string) (*models.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("interest by region: no data")
	}
	out, err := t.NLargest(TopRegions, topic)
	if err != nil {
		return nil, fmt.Errorf("interest by region: %w", err)
	}
	return out, nil
}

// RelatedTopics labels each rising topic "<title> <type>", drops the
// descriptive columns and indexes by the label.
func RelatedTopics(rising *models.Table) (*models.Table, error) {
	if rising == nil {
		return nil, fmt.Errorf("related topics: no rising topics")
	}

	labelled, err := rising.Concat("topic_title", "topic_title", "topic_type", " ")
	if err != nil {
		return nil, fmt.Errorf("related topics: %w", err)
	}
	pruned, err := labelled.Drop(relatedTopicsDropped...)
	if err != nil {
		return nil, fmt.Errorf("related topics: %w", err)
	}
	out, err := pruned.SetIndex("topic_title")
	if err != nil {
		return nil, fmt.Errorf("related topics: %w", err)
	}
	return out, nil
}

// RelatedQueries indexes the rising queries by their text.
func RelatedQueries(rising *models.Table) (*models.Table, error) {
	if rising == nil {
		return nil, fmt.Errorf("related queries: no rising queries")
	}
	out, err := rising.SetIndex("query")
	if err != nil {
		return nil, fmt.Errorf("related queries: %w", err)
	}
	return out, nil
}
