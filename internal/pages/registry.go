package pages

import (
	"github.com/AngelCh415/marketops/internal/listing"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/reviews"
)

// Page describes how one dashboard screen reads its table.
type Page struct {
	Name      string
	Title     string
	Table     string
	SortField string
	SortDir   models.SortDir
	Limit     int
	View      string
	Fields    []Field
	// Enrich adds derived values after mapping; optional.
	Enrich func(rec models.Record, it listing.Item)
}

func (p Page) Query() models.Query {
	return models.Query{Table: p.Table, SortField: p.SortField, SortDir: p.SortDir, Limit: p.Limit, View: p.View}
}

// DefaultPages is the dashboard's page set, in menu order.
func DefaultPages() []Page {
	return []Page{
		{
			Name: "chatbot", Title: "Chatbot conversations", Table: "Chatbot_Logs", SortDir: models.SortDesc, Limit: 50,
			Fields: []Field{
				Str("sessionId", "Session_ID", ""),
				Str("customer", "Customer_Name", "Client anonyme"),
				Str("channel", "Channel", "web"),
				Str("question", "Question", ""),
				Str("answer", "Answer", ""),
				Str("intent", "Intent", "autre"),
				Bool("resolved", "Resolved", false),
				Bool("escalated", "Escalated", false),
				Int("satisfaction", "Satisfaction", 0),
				Int("tokens", "Tokens_Used", 0),
				Str("language", "Language", "fr"),
			},
		},
		{
			Name: "newsletter", Title: "Newsletter personalization", Table: "Newsletter_Logs", SortDir: models.SortDesc, Limit: 30,
			Fields: []Field{
				Str("subject", "Subject", "(sans objet)"),
				Str("segment", "Segment", "Tous"),
				Int("recipients", "Recipients", 0),
				Float("openRate", "Open_Rate", 0),
				Float("clickRate", "Click_Rate", 0),
				Str("personalization", "Personalization_Level", "low"),
				Str("status", "Status", "draft"),
				Time("sentAt", "Sent_At"),
			},
		},
		{
			Name: "reviews", Title: "Review intelligence", Table: "Reviews", SortField: "Date", SortDir: models.SortDesc, Limit: 100,
			Fields: []Field{
				Str("author", "Author", "Anonyme"),
				Str("platform", "Platform", "Google"),
				Str("route", "Route", ""),
				Int("rating", "Rating", 0),
				Str("text", "Text", ""),
				Str("date", "Date", ""),
			},
			Enrich: enrichReview,
		},
		{
			Name: "pricing", Title: "Pricing monitor", Table: "Pricing_Monitor", SortField: "Route", SortDir: models.SortAsc, Limit: 100,
			Fields: []Field{
				Str("route", "Route", ""),
				Float("ourPrice", "Our_Price", 0),
				Str("competitor", "Competitor", ""),
				Float("competitorPrice", "Competitor_Price", 0),
				Str("currency", "Currency", "XPF"),
				Str("trend", "Trend", "stable"),
				Bool("alert", "Alert", false),
				Time("checkedAt", "Checked_At"),
			},
			Enrich: enrichPricing,
		},
		{
			Name: "leads", Title: "Lead scoring", Table: "Leads", SortField: "Score", SortDir: models.SortDesc, Limit: 100,
			Fields: []Field{
				Str("name", "Name", ""),
				Str("email", "Email", ""),
				Str("source", "Source", "unknown"),
				Str("segment", "Segment", ""),
				Int("score", "Score", 0),
				Str("stage", "Stage", "new"),
				Float("estimatedValue", "Estimated_Value", 0),
				Str("nextAction", "Next_Action", ""),
			},
			Enrich: enrichLead,
		},
		{
			Name: "journeys", Title: "Journey orchestration", Table: "Journeys", SortDir: models.SortDesc, Limit: 50,
			Fields: []Field{
				Str("name", "Name", ""),
				Str("trigger", "Trigger", ""),
				List("steps", "Steps"),
				Str("status", "Status", "draft"),
				Int("enrolled", "Enrolled", 0),
				Float("conversionRate", "Conversion_Rate", 0),
			},
		},
		{
			Name: "abtests", Title: "A/B tests", Table: "AB_Tests", SortDir: models.SortDesc, Limit: 50,
			Fields: []Field{
				Str("name", "Name", ""),
				Str("channel", "Channel", ""),
				Str("variantA", "Variant_A", "A"),
				Str("variantB", "Variant_B", "B"),
				Float("conversionA", "Conversion_A", 0),
				Float("conversionB", "Conversion_B", 0),
				Float("confidence", "Confidence", 0),
				Str("winner", "Winner", ""),
				Str("status", "Status", "running"),
			},
			Enrich: enrichABTest,
		},
		{
			Name: "visuals", Title: "Visual factory", Table: "Visual_Assets", SortDir: models.SortDesc, Limit: 50,
			Fields: []Field{
				Str("prompt", "Prompt", ""),
				Str("format", "Format", "1200x628"),
				Str("theme", "Theme", ""),
				Str("imageUrl", "Image_URL", ""),
				Str("campaign", "Campaign", ""),
				Str("status", "Status", "generated"),
			},
		},
		{
			Name: "social", Title: "Social media", Table: "Social_Posts", SortDir: models.SortDesc, Limit: 50,
			Fields: []Field{
				Str("platform", "Platform", ""),
				Str("caption", "Caption", ""),
				Int("likes", "Likes", 0),
				Int("comments", "Comments", 0),
				Int("shares", "Shares", 0),
				Float("engagementRate", "Engagement_Rate", 0),
				Str("status", "Status", "draft"),
			},
		},
		{
			Name: "seo", Title: "SEO keywords", Table: "SEO_Keywords", SortField: "Position", SortDir: models.SortAsc, Limit: 100,
			Fields: []Field{
				Str("keyword", "Keyword", ""),
				Int("position", "Position", 0),
				Int("previousPosition", "Previous_Position", 0),
				Int("searchVolume", "Search_Volume", 0),
				Int("difficulty", "Difficulty", 0),
				Str("url", "URL", "/"),
			},
			Enrich: enrichSEO,
		},
		{
			Name: "attribution", Title: "Attribution", Table: "Attribution", SortField: "Revenue", SortDir: models.SortDesc, Limit: 50,
			Fields: []Field{
				Str("channel", "Channel", ""),
				Int("firstTouch", "First_Touch", 0),
				Int("lastTouch", "Last_Touch", 0),
				Int("linear", "Linear", 0),
				Float("revenue", "Revenue", 0),
				Int("conversions", "Conversions", 0),
			},
		},
		{
			Name: "faq", Title: "Assistant knowledge base", Table: "FAQ", SortField: "Category", SortDir: models.SortAsc, Limit: 100,
			Fields: []Field{
				Str("question", "Question", ""),
				Str("answer", "Answer", ""),
				Str("category", "Category", "general"),
				List("keywords", "Keywords"),
			},
		},
	}
}

func enrichReview(_ models.Record, it listing.Item) {
	a := reviews.Analyze(it["text"].(string), it["rating"].(int))
	it["sentiment"] = string(a.Sentiment)
	it["sentimentScore"] = a.Score
	it["ironic"] = a.Ironic
	it["topics"] = a.Topics
}

func enrichPricing(_ models.Record, it listing.Item) {
	ours, theirs := it["ourPrice"].(float64), it["competitorPrice"].(float64)
	gap := 0.0
	if theirs > 0 {
		gap = round1((ours - theirs) / theirs * 100)
	}
	it["gapPercent"] = gap
}

func enrichLead(_ models.Record, it listing.Item) {
	switch s := it["score"].(int); {
	case s >= 80:
		it["temperature"] = "hot"
	case s >= 50:
		it["temperature"] = "warm"
	default:
		it["temperature"] = "cold"
	}
}

func enrichABTest(_ models.Record, it listing.Item) {
	a, b := it["conversionA"].(float64), it["conversionB"].(float64)
	lift := 0.0
	if a > 0 {
		lift = round1((b - a) / a * 100)
	}
	it["liftPercent"] = lift
	it["significant"] = it["confidence"].(float64) >= 95
}

func enrichSEO(_ models.Record, it listing.Item) {
	prev, cur := it["previousPosition"].(int), it["position"].(int)
	delta := 0
	if prev > 0 && cur > 0 {
		delta = prev - cur
	}
	it["positionDelta"] = delta
}

func round1(f float64) float64 {
	if f < 0 {
		return -float64(int64(-f*10+0.5)) / 10
	}
	return float64(int64(f*10+0.5)) / 10
}
