package types

// DateLayout is the day/month/year layout used for NewsItem.Date.
const DateLayout = "02/01/2006"

// NewsItem is a single normalized news record.
type NewsItem struct {
	// Date is the article date in DateLayout. Always populated.
	Date string `json:"date" bson:"date"`

	// Title is the headline as listed by the search provider.
	Title string `json:"title" bson:"title"`

	// Link is the article URL.
	Link string `json:"link" bson:"link"`

	// Content is the extracted article body, possibly empty.
	Content string `json:"content" bson:"content"`
}

// SearchResult is one entry of a news search. It is consumed immediately
// to build a NewsItem.
type SearchResult struct {
	Title   string
	Link    string
	RawDate string
}

// Outcome classifies an ItemResult.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "failed"
)

// ItemResult carries a NewsItem together with the reason its content could
// not be produced, if any. Err is never serialized.
type ItemResult struct {
	Item NewsItem
	Err  error
}

// Outcome reports whether the item has content, is legitimately empty, or
// is empty because processing failed.
func (r ItemResult) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case r.Item.Content == "":
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

// FailureReason returns the captured error text, or "" for successful items.
func (r ItemResult) FailureReason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Items strips the failure information from a batch of results, keeping order.
func Items(results []ItemResult) []NewsItem {
	items := make([]NewsItem, len(results))
	for i, r := range results {
		items[i] = r.Item
	}
	return items
}
