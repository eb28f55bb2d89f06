package octagon

// Category groups agents by the market data they cover.
type Category string

const (
	CategoryRouter       Category = "router"
	CategoryPublic       Category = "public_market"
	CategoryPrivate      Category = "private_market"
	CategoryDeepResearch Category = "deep_research"
)

// DefaultAgent routes a query to the most suitable specialised agent.
const DefaultAgent = "octagon-agent"

// Agent is one of the research agents the API can answer with.
type Agent struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

var agents = []Agent{
	{
		ID:          DefaultAgent,
		DisplayName: "01. Octagon Agent (Router)",
		Description: "Intelligent agent router that analyzes queries and routes to specialized agents",
		Category:    CategoryRouter,
	},
	{
		ID:          "octagon-sec-agent",
		DisplayName: "02. SEC Agent",
		Description: "Public market intelligence - Analyzes SEC filings and public company disclosures",
		Category:    CategoryPublic,
	},
	{
		ID:          "octagon-transcripts-agent",
		DisplayName: "03. Transcripts Agent",
		Description: "Public market intelligence - Analyzes earnings call transcripts",
		Category:    CategoryPublic,
	},
	{
		ID:          "octagon-stock-data-agent",
		DisplayName: "04. Stock Data Agent",
		Description: "Public market intelligence - Provides real-time and historical stock market data",
		Category:    CategoryPublic,
	},
	{
		ID:          "octagon-holdings-agent",
		DisplayName: "05. Holdings Agent",
		Description: "Public market intelligence - Analyzes institutional holdings data",
		Category:    CategoryPublic,
	},
	{
		ID:          "octagon-financials-agent",
		DisplayName: "06. Financials Agent",
		Description: "Public market intelligence - Analyzes financial statements",
		Category:    CategoryPublic,
	},
	{
		ID:          "octagon-crypto-agent",
		DisplayName: "07. Crypto Agent",
		Description: "Public market intelligence - Analyzes cryptocurrency market data",
		Category:    CategoryPublic,
	},
	{
		ID:          "octagon-companies-agent",
		DisplayName: "08. Companies Agent",
		Description: "Private market intelligence - Provides private company information",
		Category:    CategoryPrivate,
	},
	{
		ID:          "octagon-funding-agent",
		DisplayName: "09. Funding Agent",
		Description: "Private market intelligence - Analyzes private company funding data",
		Category:    CategoryPrivate,
	},
	{
		ID:          "octagon-funds-agent",
		DisplayName: "10. Funds Agent",
		Description: "Private market intelligence - Analyzes investment funds and fund managers",
		Category:    CategoryPrivate,
	},
	{
		ID:          "octagon-deals-agent",
		DisplayName: "11. Deals Agent",
		Description: "Private market intelligence - Analyzes M&A and IPO data",
		Category:    CategoryPrivate,
	},
	{
		ID:          "octagon-investors-agent",
		DisplayName: "12. Investors Agent",
		Description: "Private market intelligence - Analyzes venture capital and private equity investors",
		Category:    CategoryPrivate,
	},
	{
		ID:          "octagon-debts-agent",
		DisplayName: "13. Debts Agent",
		Description: "Private market intelligence - Analyzes private debts, borrowers, and lenders",
		Category:    CategoryPrivate,
	},
	{
		ID:          "octagon-scraper-agent",
		DisplayName: "14. Scraper Agent",
		Description: "Deep research intelligence - Scrapes and analyzes web content",
		Category:    CategoryDeepResearch,
	},
	{
		ID:          "octagon-deep-research-agent",
		DisplayName: "15. Deep Research Agent",
		Description: "Deep research intelligence - Conducts in-depth research",
		Category:    CategoryDeepResearch,
	},
}

// Agents returns the agent catalogue in display order.
func Agents() []Agent {
	out := make([]Agent, len(agents))
	copy(out, agents)

	return out
}

// LookupAgent finds an agent by its identifier.
func LookupAgent(id string) (Agent, bool) {
	for _, a := range agents {
		if a.ID == id {
			return a, true
		}
	}

	return Agent{}, false
}
