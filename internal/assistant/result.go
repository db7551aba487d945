package assistant

import "storebot/app/internal/catalog"

// MaxMatches bounds the number of catalog items handed to reply composition.
const MaxMatches = 3

// OutcomeKind tags a SearchOutcome.
type OutcomeKind int

const (
	OutcomeFound OutcomeKind = iota
	OutcomeNotFound
	OutcomeServiceError
)

// SearchOutcome is the result of the catalog stage. Items is set for
// OutcomeFound, Query for OutcomeNotFound and Detail for OutcomeServiceError.
type SearchOutcome struct {
	Kind   OutcomeKind
	Items  []catalog.Product
	Query  string
	Detail string
}

// Found keeps at most MaxMatches items in catalog order.
func Found(items []catalog.Product) SearchOutcome {
	n := len(items)
	if n > MaxMatches {
		n = MaxMatches
	}
	kept := make([]catalog.Product, n)
	copy(kept, items[:n])
	return SearchOutcome{Kind: OutcomeFound, Items: kept}
}

// NotFound records a search that matched nothing.
func NotFound(query string) SearchOutcome {
	return SearchOutcome{Kind: OutcomeNotFound, Query: query}
}

// ServiceError records a catalog transport failure.
func ServiceError(detail string) SearchOutcome {
	return SearchOutcome{Kind: OutcomeServiceError, Detail: detail}
}

// ResultKind tags a Result.
type ResultKind int

const (
	ResultReply ResultKind = iota
	ResultFailure
)

func (k ResultKind) String() string {
	if k == ResultReply {
		return "reply"
	}
	return "failure"
}

// Result is the only value handed back to the messaging gateway. For a reply
// Text is the composed answer and AuxiliaryLink a storefront search URL; for a
// failure Text is the message to show the user.
type Result struct {
	Kind          ResultKind
	Text          string
	AuxiliaryLink string
	State         State
	Cause         ErrorKind
}

// Reply builds a successful result.
func Reply(text, auxiliaryLink string) Result {
	return Result{Kind: ResultReply, Text: text, AuxiliaryLink: auxiliaryLink, State: StateDone}
}

// Failure builds a failed result.
func Failure(userMessage string, cause ErrorKind) Result {
	return Result{Kind: ResultFailure, Text: userMessage, State: StateFailed, Cause: cause}
}

// IsReply reports whether r carries a composed answer.
func (r Result) IsReply() bool {
	return r.Kind == ResultReply
}
