package models

// DomainCheckResult is the availability verdict for one domain, with pricing
// attached. Available is nil when the registrar could not be reached and the
// verdict is unknown.
type DomainCheckResult struct {
	Domain         string `json:"domain"`
	Available      *bool  `json:"available"`
	Status         string `json:"status"`
	TLD            string `json:"tld"`
	Price          int    `json:"price"`
	PriceFormatted string `json:"priceFormatted"`
}

type SuggestionsResponse struct {
	Suggestions    []DomainCheckResult `json:"suggestions"`
	AvailableCount int                 `json:"availableCount"`
}

type RegisterDomainResponse struct {
	Success        bool     `json:"success"`
	Domain         string   `json:"domain"`
	Status         string   `json:"status"`
	Price          int      `json:"price"`
	PriceFormatted string   `json:"priceFormatted"`
	NextSteps      []string `json:"nextSteps"`
}

// DNSInstruction is one record the user must create on their own registrar
// when connecting an externally owned domain.
type DNSInstruction struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DNSInstructions struct {
	A     DNSInstruction `json:"a"`
	CNAME DNSInstruction `json:"cname"`
}

type ConnectDomainResponse struct {
	Success bool            `json:"success"`
	Domain  string          `json:"domain"`
	DNS     DNSInstructions `json:"dns"`
}

type DisconnectDomainResponse struct {
	Success bool `json:"success"`
}

type RetryBindingResponse struct {
	Success  bool `json:"success"`
	Verified bool `json:"verified"`
}
