package intel

// Reduce merges a worker's partial update into the accumulated session
// state. Messages are append-only; every other field is set-once, written
// only when previously absent. Identity fields (mode, subjects) are fixed at
// session creation and never overwritten.
func Reduce(prev, delta SessionState) SessionState {
	out := prev

	if out.Mode == "" {
		out.Mode = delta.Mode
	}
	if out.Subject == "" {
		out.Subject = delta.Subject
	}
	if out.SubjectB == "" {
		out.SubjectB = delta.SubjectB
	}

	if out.Research == nil {
		out.Research = delta.Research
	}
	if out.ResearchB == nil {
		out.ResearchB = delta.ResearchB
	}
	if out.Analysis == "" {
		out.Analysis = delta.Analysis
	}
	if out.Decision == "" {
		out.Decision = delta.Decision
	}

	out.Messages = append(out.Messages, delta.Messages...)
	return out
}
