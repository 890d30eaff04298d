package models

import "fmt"

const (
	DefaultTopic        = "bitcoin"
	DefaultTimeframe    = "2015-01-01 2022-09-08"
	DefaultHostLanguage = "en-US"
	// DefaultTimezone is the provider's offset in minutes for CST.
	DefaultTimezone = 360
)

// QueryParameters describe the trends query built once at startup.
// Fields are unexported so the value cannot change after construction.
type QueryParameters struct {
	topics       []string
	timeframe    string
	category     int
	geo          string
	property     string
	hostLanguage string
	timezone     int
}

// QueryOptions carries the optional query settings.
type QueryOptions struct {
	Category     int
	Geo          string
	Property     string
	HostLanguage string
	Timezone     int
}

// NewQueryParameters validates and freezes a query.
func NewQueryParameters(topics []string, timeframe string, opts QueryOptions) (QueryParameters, error) {
	if len(topics) == 0 {
		return QueryParameters{}, fmt.Errorf("at least one topic is required")
	}
	for i, t := range topics {
		if t == "" {
			return QueryParameters{}, fmt.Errorf("topic %d is empty", i)
		}
	}
	if timeframe == "" {
		return QueryParameters{}, fmt.Errorf("timeframe is required")
	}
	if opts.HostLanguage == "" {
		opts.HostLanguage = DefaultHostLanguage
	}

	return QueryParameters{
		topics:       append([]string(nil), topics...),
		timeframe:    timeframe,
		category:     opts.Category,
		geo:          opts.Geo,
		property:     opts.Property,
		hostLanguage: opts.HostLanguage,
		timezone:     opts.Timezone,
	}, nil
}

// DefaultQueryParameters returns the startup query: one topic over a fixed date range.
func DefaultQueryParameters() QueryParameters {
	q, _ := NewQueryParameters([]string{DefaultTopic}, DefaultTimeframe, QueryOptions{
		HostLanguage: DefaultHostLanguage,
		Timezone:     DefaultTimezone,
	})
	return q
}

// Topics returns a copy of the topic list.
func (q QueryParameters) Topics() []string {
	return append([]string(nil), q.topics...)
}

// PrimaryTopic is the topic every view charts.
func (q QueryParameters) PrimaryTopic() string {
	if len(q.topics) == 0 {
		return ""
	}
	return q.topics[0]
}

func (q QueryParameters) Timeframe() string    { return q.timeframe }
func (q QueryParameters) Category() int        { return q.category }
func (q QueryParameters) Geo() string          { return q.geo }
func (q QueryParameters) Property() string     { return q.property }
func (q QueryParameters) HostLanguage() string { return q.hostLanguage }
func (q QueryParameters) Timezone() int        { return q.timezone }
