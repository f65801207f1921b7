package templates

// Verdict is the outcome of matching an issue body against the templates.
type Verdict struct {
	conforms bool
	guess    *Template
}

// Conforming is the verdict for a body that satisfies some template.
func Conforming() Verdict {
	return Verdict{conforms: true}
}

// NeedsInfo is the verdict for a body that satisfies no template. A nil
// guess means the template could not be determined.
func NeedsInfo(guess *Template) Verdict {
	return Verdict{guess: guess}
}

// Conforms reports whether the body satisfied at least one template.
func (v Verdict) Conforms() bool { return v.conforms }

// NeedsInfo reports whether guidance should be posted.
func (v Verdict) NeedsInfo() bool { return !v.conforms }

// BestGuess returns the template to point the author at, if one was found.
func (v Verdict) BestGuess() (Template, bool) {
	if v.guess == nil {
		return Template{}, false
	}
	return *v.guess, true
}

// Match decides whether userHeaders satisfy any template.
//
// The first fully satisfied template short-circuits to a conforming verdict.
// Otherwise the best guess is the last template, in listing order, sharing at
// least one header with the body. A body without headers never conforms.
func Match(userHeaders []string, templates []Template) Verdict {
	if len(userHeaders) == 0 {
		return NeedsInfo(nil)
	}

	for _, tmpl := range templates {
		if tmpl.SatisfiedBy(userHeaders) {
			return Conforming()
		}
	}

	return NeedsInfo(bestGuess(userHeaders, templates))
}

func bestGuess(userHeaders []string, templates []Template) *Template {
	var guess *Template
	for i := range templates {
		if templates[i].Overlaps(userHeaders) {
			candidate := templates[i]
			guess = &candidate
		}
	}
	return guess
}
