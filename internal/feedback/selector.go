package feedback

// DirectiveSelector is the single-choice session directive holder.
// It starts at continue, accepts any selectable directive until the
// interaction submits, and is frozen (read-only) afterwards.
type DirectiveSelector struct {
	current SessionDirective
	frozen  bool
}

// NewDirectiveSelector returns a selector in the default continue state.
func NewDirectiveSelector() *DirectiveSelector {
	return &DirectiveSelector{current: DirectiveContinue}
}

// Select sets the active directive. Reserved or unknown values are ignored,
// as are selections after the selector has been frozen.
func (s *DirectiveSelector) Select(d SessionDirective) {
	if s.frozen || !d.Valid() {
		return
	}
	s.current = d
}

// Current returns the active directive.
func (s *DirectiveSelector) Current() SessionDirective {
	return s.current
}

// Freeze makes the selector read-only for the remainder of the run.
func (s *DirectiveSelector) Freeze() {
	s.frozen = true
}
