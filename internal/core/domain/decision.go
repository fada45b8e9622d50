package domain

// PostSubmitAction is the outcome of the post-validation decision
// table: what happens after the user hits "finish".
type PostSubmitAction int

const (
	// ConfirmAndSubmit persists all sub-forms and shows the agreement
	// confirmation modal.
	ConfirmAndSubmit PostSubmitAction = iota
	// SurveyAndSubmit persists all sub-forms and opens the dismissal
	// survey modal; survey capture is independent of the submission.
	SurveyAndSubmit
	// ConfirmOnly shows the confirmation modal without persisting
	// anything further.
	ConfirmOnly
)

func (a PostSubmitAction) String() string {
	switch a {
	case ConfirmAndSubmit:
		return "confirm_and_submit"
	case SurveyAndSubmit:
		return "survey_and_submit"
	case ConfirmOnly:
		return "confirm_only"
	}
	return "unknown"
}

func (a PostSubmitAction) Submits() bool {
	return a == ConfirmAndSubmit || a == SurveyAndSubmit
}

// DecidePostSubmit selects exactly one action from the document class,
// survey existence and the number of configured dynamic form sections.
//
//	class != dismissal                      -> ConfirmAndSubmit
//	dismissal, no survey, sections > 0      -> SurveyAndSubmit
//	dismissal, no survey, no sections       -> ConfirmOnly
//	dismissal, survey exists                -> ConfirmAndSubmit
func DecidePostSubmit(classConstant string, hasSurvey bool, formColumns int) PostSubmitAction {
	if classConstant != ClassAppForDismissal {
		return ConfirmAndSubmit
	}
	if !hasSurvey {
		if formColumns > 0 {
			return SurveyAndSubmit
		}
		return ConfirmOnly
	}
	return ConfirmAndSubmit
}
