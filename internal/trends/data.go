package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"trends-viewer/internal/models"
)

// Resolution is the geographic granularity of interest-by-region.
type Resolution string

const (
	ResolutionCountry Resolution = "COUNTRY"
	ResolutionRegion  Resolution = "REGION"
	ResolutionCity    Resolution = "CITY"
	ResolutionDMA     Resolution = "DMA"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// RelatedResult holds the two ranked lists the provider returns per topic.
// Either table is nil when the provider sent no list for it.
type RelatedResult struct {
	Top    *models.Table
	Rising *models.Table
}

type timelineResponse struct {
	Default struct {
		TimelineData []struct {
			Time      string `json:"time"`
			Value     []int  `json:"value"`
			IsPartial bool   `json:"isPartial"`
		} `json:"timelineData"`
	} `json:"default"`
}

type geoResponse struct {
	Default struct {
		GeoMapData []struct {
			GeoCode string `json:"geoCode"`
			GeoName string `json:"geoName"`
			Value   []int  `json:"value"`
		} `json:"geoMapData"`
	} `json:"default"`
}

type rankedKeyword struct {
	Query          string  `json:"query"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formattedValue"`
	Link           string  `json:"link"`
	Topic          struct {
		Mid   string `json:"mid"`
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"topic"`
}

type relatedResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []rankedKeyword `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

// InterestOverTime returns one row per period indexed by "date", a numeric
// column per topic and the text column "isPartial".
func (c *Client) InterestOverTime(ctx context.Context) (*models.Table, error) {
	set, err := c.payload()
	if err != nil {
		return nil, err
	}
	if set.timeseries == nil {
		return nil, fmt.Errorf("%w: TIMESERIES", ErrMissingWidget)
	}

	var resp timelineResponse
	if err := c.fetchWidget(ctx, interestOverTimePath, *set.timeseries, &resp); err != nil {
		return nil, fmt.Errorf("interest over time: %w", err)
	}

	topics := c.query.Topics()
	points := resp.Default.TimelineData

	stamps := make([]time.Time, len(points))
	values := make([][]float64, len(topics))
	partial := make([]string, len(points))
	for i, p := range points {
		secs, err := strconv.ParseInt(p.Time, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interest over time: bad timestamp %q: %w", p.Time, err)
		}
		stamps[i] = time.Unix(secs, 0).UTC()
		for k := range topics {
			v := 0.0
			if k < len(p.Value) {
				v = float64(p.Value[k])
			}
			values[k] = append(values[k], v)
		}
		partial[i] = boolText(p.IsPartial)
	}

	columns := make([]models.Column, 0, len(topics)+1)
	for k, topic := range topics {
		columns = append(columns, models.NewNumericColumn(topic, values[k]))
	}
	columns = append(columns, models.NewTextColumn("isPartial", partial))

	return models.NewTable("date", formatStamps(stamps), columns...)
}

// InterestByRegion returns one row per region indexed by "geoName" with a
// numeric column per topic, plus "geoCode" when includeGeoCode is set.
func (c *Client) InterestByRegion(ctx context.Context, resolution Resolution, includeLowVolume, includeGeoCode bool) (*models.Table, error) {
	set, err := c.payload()
	if err != nil {
		return nil, err
	}
	if set.geoMap == nil {
		return nil, fmt.Errorf("%w: GEO_MAP", ErrMissingWidget)
	}

	extra := map[string]interface{}{"includeLowSearchVolumeGeos": includeLowVolume}
	switch geo := c.query.Geo(); {
	case geo == "":
		extra["resolution"] = string(resolution)
	case geo == "US" && (resolution == ResolutionDMA || resolution == ResolutionCity || resolution == ResolutionRegion):
		extra["resolution"] = string(resolution)
	}

	var resp geoResponse
	if err := c.fetchWidget(ctx, interestByRegionPath, set.geoMap.withRequest(extra), &resp); err != nil {
		return nil, fmt.Errorf("interest by region: %w", err)
	}

	topics := c.query.Topics()
	rows := resp.Default.GeoMapData
	names := make([]string, len(rows))
	codes := make([]string, len(rows))
	values := make([][]float64, len(topics))
	for i, r := range rows {
		names[i] = r.GeoName
		codes[i] = r.GeoCode
		for k := range topics {
			v := 0.0
			if k < len(r.Value) {
				v = float64(r.Value[k])
			}
			values[k] = append(values[k], v)
		}
	}

	columns := make([]models.Column, 0, len(topics)+1)
	for k, topic := range topics {
		columns = append(columns, models.NewNumericColumn(topic, values[k]))
	}
	if includeGeoCode {
		columns = append(columns, models.NewTextColumn("geoCode", codes))
	}

	return models.NewTable("geoName", names, columns...)
}

// RelatedTopics returns the top and rising topic lists keyed by topic. Tables
// carry value, formattedValue, link, topic_mid, topic_title and topic_type.
func (c *Client) RelatedTopics(ctx context.Context) (map[string]RelatedResult, error) {
	set, err := c.payload()
	if err != nil {
		return nil, err
	}
	return c.related(ctx, set.relatedTopics, topicTable)
}

// RelatedQueries returns the top and rising query lists keyed by topic. Tables
// carry query and value.
func (c *Client) RelatedQueries(ctx context.Context) (map[string]RelatedResult, error) {
	set, err := c.payload()
	if err != nil {
		return nil, err
	}
	return c.related(ctx, set.relatedQueries, queryTable)
}

func (c *Client) related(ctx context.Context, widgets []widget, build func([]rankedKeyword) (*models.Table, error)) (map[string]RelatedResult, error) {
	results := make(map[string]RelatedResult, len(widgets))
	for _, w := range widgets {
		var resp relatedResponse
		if err := c.fetchWidget(ctx, relatedSearchesPath, w, &resp); err != nil {
			return nil, fmt.Errorf("related searches: %w", err)
		}

		var result RelatedResult
		lists := resp.Default.RankedList
		if len(lists) > 0 && len(lists[0].RankedKeyword) > 0 {
			top, err := build(lists[0].RankedKeyword)
			if err != nil {
				return nil, err
			}
			result.Top = top
		}
		if len(lists) > 1 && len(lists[1].RankedKeyword) > 0 {
			rising, err := build(lists[1].RankedKeyword)
			if err != nil {
				return nil, err
			}
			result.Rising = rising
		}
		results[w.keyword()] = result
	}
	return results, nil
}

func (c *Client) fetchWidget(ctx context.Context, path string, w widget, out interface{}) error {
	encoded, err := w.encodedRequest()
	if err != nil {
		return fmt.Errorf("encode widget request: %w", err)
	}

	params := url.Values{}
	params.Set("req", encoded)
	params.Set("token", w.Token)
	params.Set("tz", strconv.Itoa(c.query.Timezone()))

	body, err := c.do(ctx, fasthttp.MethodGet, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func topicTable(items []rankedKeyword) (*models.Table, error) {
	n := len(items)
	values := make([]float64, n)
	formatted := make([]string, n)
	links := make([]string, n)
	mids := make([]string, n)
	titles := make([]string, n)
	types := make([]string, n)
	for i, it := range items {
		values[i] = it.Value
		formatted[i] = it.FormattedValue
		links[i] = it.Link
		mids[i] = it.Topic.Mid
		titles[i] = it.Topic.Title
		types[i] = it.Topic.Type
	}
	return models.NewTable("", rangeIndex(n),
		models.NewNumericColumn("value", values),
		models.NewTextColumn("formattedValue", formatted),
		models.NewTextColumn("link", links),
		models.NewTextColumn("topic_mid", mids),
		models.NewTextColumn("topic_title", titles),
		models.NewTextColumn("topic_type", types),
	)
}

func queryTable(items []rankedKeyword) (*models.Table, error) {
	n := len(items)
	queries := make([]string, n)
	values := make([]float64, n)
	for i, it := range items {
		queries[i] = it.Query
		values[i] = it.Value
	}
	return models.NewTable("", rangeIndex(n),
		models.NewTextColumn("query", queries),
		models.NewNumericColumn("value", values),
	)
}

func rangeIndex(n int) []string {
	index := make([]string, n)
	for i := range index {
		index[i] = strconv.Itoa(i)
	}
	return index
}

// formatStamps uses the date-only layout unless some stamp carries a time of day.
func formatStamps(stamps []time.Time) []string {
	layout := DateLayout
	for _, s := range stamps {
		if !s.Equal(s.Truncate(24 * time.Hour)) {
			layout = DateTimeLayout
			break
		}
	}
	out := make([]string, len(stamps))
	for i, s := range stamps {
		out[i] = s.Format(layout)
	}
	return out
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
