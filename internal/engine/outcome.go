package engine

// Outcome is the result of the return-redirect handler. The redirect is a
// control-flow signal, not a failure: callers must check Redirects before
// continuing checkout.
type Outcome struct {
	redirectURL string
}

func Continue() Outcome {
	return Outcome{}
}

func RedirectTo(url string) Outcome {
	return Outcome{redirectURL: url}
}

func (o Outcome) Redirects() bool {
	return o.redirectURL != ""
}

func (o Outcome) RedirectURL() string {
	return o.redirectURL
}
