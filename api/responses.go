package api

// AuthorizeResponse is the response for an authorization decision.
type AuthorizeResponse struct {
	Allowed       bool     `json:"allowed" description:"Whether the request is allowed"`
	Verdict       string   `json:"verdict" description:"Decision verdict (allow/deny)"`
	Reason        string   `json:"reason,omitempty" description:"Deny reason code"`
	Detail        string   `json:"detail,omitempty" description:"Human-readable detail"`
	MatchedScopes []string `json:"matched_scopes,omitempty" description:"Scope assignments that satisfied the request"`
	EvalTimeNs    int64    `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// BatchAuthorizeResponse contains results for multiple decisions.
type BatchAuthorizeResponse struct {
	Results []AuthorizeResponse `json:"results" description:"Decision results in order"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
