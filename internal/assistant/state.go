package assistant

// State is a step of the query pipeline. Failed is absorbing.
type State int

const (
	StateReceived State = iota
	StateNameExtracted
	StateNameTransliterated
	StateSearchCompleted
	StateReplyComposed
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateNameExtracted:
		return "name_extracted"
	case StateNameTransliterated:
		return "name_transliterated"
	case StateSearchCompleted:
		return "search_completed"
	case StateReplyComposed:
		return "reply_composed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorKind classifies why a stage did not produce its normal output.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindExtractionFailure is recovered by using the raw message as the product name.
	KindExtractionFailure
	KindCatalogUnavailable
	KindCatalogEmpty
	KindCompositionFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindExtractionFailure:
		return "extraction_failure"
	case KindCatalogUnavailable:
		return "catalog_unavailable"
	case KindCatalogEmpty:
		return "catalog_empty"
	case KindCompositionFailure:
		return "composition_failure"
	default:
		return "unknown"
	}
}
