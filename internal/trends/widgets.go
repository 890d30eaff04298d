package trends

import (
	"encoding/json"
	"strings"
)

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

// widget is one explore widget. Request is echoed back to the data endpoint
// verbatim, so it stays untyped.
type widget struct {
	ID      string                 `json:"id"`
	Token   string                 `json:"token"`
	Request map[string]interface{} `json:"request"`
}

type widgetSet struct {
	timeseries     *widget
	geoMap         *widget
	relatedTopics  []widget
	relatedQueries []widget
}

func splitWidgets(widgets []widget) *widgetSet {
	set := &widgetSet{}
	firstGeoMap := true
	for i := range widgets {
		w := widgets[i]
		switch {
		case w.ID == "TIMESERIES":
			set.timeseries = &w
		case w.ID == "GEO_MAP" && firstGeoMap:
			set.geoMap = &w
			firstGeoMap = false
		case strings.Contains(w.ID, "RELATED_TOPICS"):
			set.relatedTopics = append(set.relatedTopics, w)
		case strings.Contains(w.ID, "RELATED_QUERIES"):
			set.relatedQueries = append(set.relatedQueries, w)
		}
	}
	return set
}

func (w widget) encodedRequest() (string, error) {
	b, err := json.Marshal(w.Request)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// keyword returns the topic a related-searches widget was issued for.
func (w widget) keyword() string {
	restriction, _ := w.Request["restriction"].(map[string]interface{})
	complexRestriction, _ := restriction["complexKeywordsRestriction"].(map[string]interface{})
	keywords, _ := complexRestriction["keyword"].([]interface{})
	if len(keywords) == 0 {
		return ""
	}
	first, _ := keywords[0].(map[string]interface{})
	value, _ := first["value"].(string)
	return value
}

// withRequest returns a copy whose request carries the extra fields.
func (w widget) withRequest(extra map[string]interface{}) widget {
	req := make(map[string]interface{}, len(w.Request)+len(extra))
	for k, v := range w.Request {
		req[k] = v
	}
	for k, v := range extra {
		req[k] = v
	}
	w.Request = req
	return w
}
