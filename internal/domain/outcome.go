package domain

// Failure names one item that could not be written and why.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Outcome aggregates best-effort writes so callers see partial failures
// instead of them only reaching the log.
type Outcome struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

func (o *Outcome) Ok(id string) {
	o.Succeeded = append(o.Succeeded, id)
}

func (o *Outcome) Fail(id string, err error) {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	o.Failed = append(o.Failed, Failure{ID: id, Reason: reason})
}

func (o Outcome) HasFailures() bool {
	return len(o.Failed) > 0
}
